package crisis

import "strings"

// Keywords is scanned in order; the first hit wins.
var Keywords = []string{
	"suicide",
	"kill myself",
	"self-harm",
	"harm myself",
	"hurt myself",
	"end my life",
	"don't want to live",
	"better off dead",
	"worthless",
	"hopeless",
	"can't go on",
	"want to die",
	"kill me",
	"end it all",
}

// Scan reports the first keyword contained in text after lowercasing and trimming.
// Matching is plain substring containment.
func Scan(text string) (string, bool) {
	return ScanList(Keywords, text)
}

func ScanList(keywords []string, text string) (string, bool) {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" {
		return "", false
	}
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return kw, true
		}
	}
	return "", false
}
