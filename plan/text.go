package plan

import (
	json "github.com/couchbase/go_json"

	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/value"
)

// Text scans a text index. indexPrefix carries the equality values
// extracted from the prefix fields preceding the text sentinel;
// filter carries whatever predicate remains after those
// equalities were detached.
type Text struct {
	readonly
	indexID     int
	query       string
	language    string
	indexPrefix map[string]value.Value
	filter      expression.Expr
}

func NewText(indexID int, query, language string, indexPrefix map[string]value.Value, filter expression.Expr) *Text {
	return &Text{indexID: indexID, query: query, language: language, indexPrefix: indexPrefix, filter: filter}
}

func (this *Text) Accept(visitor Visitor) (interface{}, error) { return visitor.VisitText(this) }
func (this *Text) New() Operator                               { return &Text{} }

func (this *Text) IndexID() int                          { return this.indexID }
func (this *Text) Query() string                         { return this.query }
func (this *Text) Language() string                      { return this.language }
func (this *Text) IndexPrefix() map[string]value.Value   { return this.indexPrefix }
func (this *Text) SetIndexPrefix(p map[string]value.Value) { this.indexPrefix = p }
func (this *Text) Filter() expression.Expr               { return this.filter }
func (this *Text) SetFilter(f expression.Expr)           { this.filter = f }

func (this *Text) MarshalJSON() ([]byte, error) {
	prefix := make(map[string]interface{}, len(this.indexPrefix))
	for k, v := range this.indexPrefix {
		prefix[k] = v.Actual()
	}
	r := map[string]interface{}{
		"#operator":   "Text",
		"index":       this.indexID,
		"query":       this.query,
		"language":    this.language,
		"indexPrefix": prefix,
	}
	if this.filter != nil {
		fm, err := expression.Marshal(this.filter)
		if err != nil {
			return nil, err
		}
		r["filter"] = json.RawMessage(fm)
	}
	return json.Marshal(r)
}

func (this *Text) UnmarshalJSON(body []byte) error {
	var u struct {
		Index       int                    `json:"index"`
		Query       string                 `json:"query"`
		Language    string                 `json:"language"`
		IndexPrefix map[string]interface{} `json:"indexPrefix"`
		Filter      json.RawMessage        `json:"filter"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return err
	}
	this.indexID, this.query, this.language = u.Index, u.Query, u.Language
	this.indexPrefix = make(map[string]value.Value, len(u.IndexPrefix))
	for k, v := range u.IndexPrefix {
		this.indexPrefix[k] = valueOf(v)
	}
	if len(u.Filter) > 0 {
		filter, err := expression.Unmarshal(u.Filter)
		if err != nil {
			return err
		}
		this.filter = filter
	}
	return nil
}
