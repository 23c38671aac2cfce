package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

type NewsItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}

type CompetitorRecord struct {
	Name string     `json:"name"`
	News []NewsItem `json:"news"`
}

type CompanyRecord struct {
	Name           string      `json:"name"`
	CollectionDate string      `json:"collection_date"`
	News           []NewsItem  `json:"news"`
	Competitors    Competitors `json:"competitors"`
}

// Competitors is a name -> CompetitorRecord mapping that keeps the key order of
// the JSON object it was decoded from.
type Competitors struct {
	keys    []string
	records map[string]CompetitorRecord
}

func NewCompetitors(records ...CompetitorRecord) Competitors {
	var c Competitors
	for _, r := range records {
		c.Set(r.Name, r)
	}
	return c
}

func (c *Competitors) Set(name string, record CompetitorRecord) {
	if c.records == nil {
		c.records = make(map[string]CompetitorRecord)
	}
	if _, ok := c.records[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.records[name] = record
}

func (c Competitors) Get(name string) (CompetitorRecord, bool) {
	r, ok := c.records[name]
	return r, ok
}

func (c Competitors) Names() []string {
	return append([]string(nil), c.keys...)
}

func (c Competitors) Len() int {
	return len(c.keys)
}

// Each visits competitors in insertion order until fn returns false.
func (c Competitors) Each(fn func(name string, record CompetitorRecord) bool) {
	for _, k := range c.keys {
		if !fn(k, c.records[k]) {
			return
		}
	}
}

func (c *Competitors) UnmarshalJSON(data []byte) error {
	*c = Competitors{}

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if !gjson.ValidBytes(trimmed) {
		return fmt.Errorf("competitors: invalid JSON")
	}

	result := gjson.ParseBytes(trimmed)
	if !result.IsObject() {
		return fmt.Errorf("competitors: expected object, got %s", result.Type)
	}

	var decodeErr error
	result.ForEach(func(key, value gjson.Result) bool {
		var record CompetitorRecord
		if err := json.Unmarshal([]byte(value.Raw), &record); err != nil {
			decodeErr = fmt.Errorf("competitors[%q]: %w", key.String(), err)
			return false
		}
		c.Set(key.String(), record)
		return true
	})

	return decodeErr
}

func (c Competitors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.records[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
