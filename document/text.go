package document

import (
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

// splitter breaks text of anonymous lines into sentences. Nil splitter keeps
// text intact.
type splitter struct {
	*sentences.DefaultSentenceTokenizer
}

func newSplitter(log *zap.Logger) *splitter {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentences tokenizer data, turning off sentence splitting", zap.Error(err))
		return nil
	}
	return &splitter{tok}
}

// split returns non empty sentences of text. Tokenizer attaches trailing
// spaces of a sentence to the next one, they are dropped here.
func (s *splitter) split(text string) []string {
	if s == nil {
		return []string{text}
	}
	var res []string
	for _, sentence := range s.Tokenize(text) {
		if t := strings.TrimSpace(sentence.Text); len(t) > 0 {
			res = append(res, t)
		}
	}
	if len(res) == 0 {
		return []string{text}
	}
	return res
}

// collapseSpace normalizes white space the way block text is rendered.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
