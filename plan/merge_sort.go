package plan

import (
	json "github.com/couchbase/go_json"

	"github.com/arvo-db/accessplan/index"
)

// MergeSort merges already-sorted children into a single stream ordered
// by sort, used above a union whose children each already emit in the
// requested order.
type MergeSort struct {
	readonly
	sort     []index.KeyElement
	children []Operator
}

func NewMergeSort(sort []index.KeyElement, children ...Operator) *MergeSort {
	return &MergeSort{sort: sort, children: children}
}

func (this *MergeSort) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitMergeSort(this)
}
func (this *MergeSort) New() Operator            { return &MergeSort{} }
func (this *MergeSort) Children() []Operator     { return this.children }
func (this *MergeSort) Sort() []index.KeyElement { return this.sort }

func (this *MergeSort) MarshalJSON() ([]byte, error) {
	sort := make([]map[string]interface{}, len(this.sort))
	for i, k := range this.sort {
		sort[i] = map[string]interface{}{"field": k.Field, "dir": int(k.Dir)}
	}
	return json.Marshal(map[string]interface{}{
		"#operator": "MergeSort",
		"sort":      sort,
		"children":  this.children,
	})
}

func (this *MergeSort) UnmarshalJSON(body []byte) error {
	var u struct {
		Sort []struct {
			Field string `json:"field"`
			Dir   int    `json:"dir"`
		} `json:"sort"`
		Children json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return err
	}
	this.sort = make([]index.KeyElement, len(u.Sort))
	for i, k := range u.Sort {
		this.sort[i] = index.KeyElement{Field: k.Field, Dir: index.Direction(k.Dir)}
	}
	children, err := unmarshalOperandList(u.Children)
	if err != nil {
		return err
	}
	this.children = children
	return nil
}
