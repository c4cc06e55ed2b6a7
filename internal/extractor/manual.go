package extractor

import (
	"regexp"
	"strings"
)

// Line shapes tried in priority order; first match wins.
//
//	[10:00] Alice: hi
//	10:00 Alice: hi
//	Alice: hi
var (
	reBracketed = regexp.MustCompile(`^\[([^\]]+)\]\s*([^:]+?)\s*:\s*(.*)$`)
	reLeadToken = regexp.MustCompile(`^(\S+)\s+([^:]+?)\s*:\s*(.*)$`)
	reSenderMsg = regexp.MustCompile(`^([^:]+?)\s*:\s*(.*)$`)
)

// ParseChatLines extracts messages from raw transcript text using local
// line heuristics only. It is deliberately lossy: lines matching none of
// the known shapes are dropped without error. This is the pipeline's last
// resort, not a chat-log grammar.
func ParseChatLines(text string) []Record {
	var records []Record
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := reBracketed.FindStringSubmatch(line); m != nil {
			records = append(records, normalizeRecord(Record{
				Timestamp: m[1],
				Sender:    m[2],
				Message:   m[3],
			}))
			continue
		}
		if m := reLeadToken.FindStringSubmatch(line); m != nil {
			records = append(records, normalizeRecord(Record{
				Timestamp: m[1],
				Sender:    m[2],
				Message:   m[3],
			}))
			continue
		}
		if m := reSenderMsg.FindStringSubmatch(line); m != nil {
			records = append(records, normalizeRecord(Record{
				Sender:  m[1],
				Message: m[2],
			}))
		}
	}
	return records
}
