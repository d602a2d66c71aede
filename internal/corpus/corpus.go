// Package corpus reads, writes, validates and merges intent corpora.
//
// A corpus is the JSON document
//
//	{"intents": [{"intent": "greeting", "examples": ["hola"], "response": "¡Hola!"}]}
//
// Response is optional. Examples is a list of utterances labeled with the intent.
package corpus

// Intent is one labeled category of utterances and its canned response
type Intent struct {
	Name     string   `json:"intent" validate:"notblank"`
	Examples []string `json:"examples" validate:"required,min=1,dive,notblank"`
	Response *string  `json:"response,omitempty" validate:"omitempty,notblank"` // nil = absent
}

// Corpus is the full set of intents
type Corpus struct {
	Intents []Intent `json:"intents" validate:"required,min=1,dive"`
}

// ResponseText returns the response or "" when absent
func (i Intent) ResponseText() string {
	if i.Response == nil {
		return ""
	}
	return *i.Response
}

func (i Intent) clone() Intent {
	out := Intent{Name: i.Name}
	if i.Examples != nil {
		out.Examples = append([]string{}, i.Examples...)
	}
	if i.Response != nil {
		r := *i.Response
		out.Response = &r
	}
	return out
}

// Clone returns a deep copy
func (c *Corpus) Clone() *Corpus {
	if c == nil {
		return nil
	}
	out := &Corpus{}
	if c.Intents != nil {
		out.Intents = make([]Intent, len(c.Intents))
		for i, in := range c.Intents {
			out.Intents[i] = in.clone()
		}
	}
	return out
}

func (c *Corpus) index(name string) int {
	for i := range c.Intents {
		if c.Intents[i].Name == name {
			return i
		}
	}
	return -1
}

// Lookup finds an intent by name
func (c *Corpus) Lookup(name string) (*Intent, bool) {
	if c == nil {
		return nil, false
	}
	idx := c.index(name)
	if idx < 0 {
		return nil, false
	}
	return &c.Intents[idx], true
}

// TrainingSet flattens the corpus into parallel example/label lists
func (c *Corpus) TrainingSet() (examples []string, labels []string) {
	for _, in := range c.Intents {
		for _, ex := range in.Examples {
			examples = append(examples, ex)
			labels = append(labels, in.Name)
		}
	}
	return examples, labels
}

// ExampleCount returns the number of examples across all intents
func (c *Corpus) ExampleCount() int {
	n := 0
	for _, in := range c.Intents {
		n += len(in.Examples)
	}
	return n
}

// StringPtr is a convenience for building intents with a response
func StringPtr(s string) *string {
	return &s
}
