// Command planexplain is a diagnostic harness for the access-path planner:
// it reads a tagged predicate tree and a candidate index catalog as JSON,
// runs Plan, and prints the resulting query solution tree (or the
// NoIndexedPlan/InvariantViolation diagnostic) as JSON. It is not a server;
// it exists purely to exercise the planner end to end from the command
// line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/errors"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/logging"
	"github.com/arvo-db/accessplan/plan"
	"github.com/arvo-db/accessplan/planner"
)

var INPUT = flag.String("input", "", "Path to the request JSON file (default: read from stdin)")
var LOG_LEVEL = flag.String("loglevel", "INFO", "Logging level (NONE, FATAL, SEVERE, ERROR, WARN, INFO, REQUEST, DEBUG, TRACE)")
var NO_BLOCKING_SORT = flag.Bool("no-blocking-sort", false, "Forbid plans that would require an in-memory sort")
var FIND_ONE = flag.Bool("find-one", false, "Cap a collection scan's maxScan at 1, as a findOne-style caller would")

// request is the CLI's input document: a canonical query plus the index
// catalog it should be planned against.
type request struct {
	Namespace           string          `json:"namespace"`
	Predicate           json.RawMessage `json:"predicate"`
	Sort                []sortField     `json:"sort"`
	Natural             string          `json:"naturalDirection"` // "", "asc", "desc"
	MaxScan             int64           `json:"maxScan"`
	Tailable            bool            `json:"tailable"`
	ReturnKey           bool            `json:"returnKey"`
	WantGeoNearPoint    bool            `json:"wantGeoNearPoint"`
	WantGeoNearDistance bool            `json:"wantGeoNearDistance"`
	Indices             []index.Entry   `json:"indices"`
}

type sortField struct {
	Field string `json:"field"`
	Dir   int    `json:"dir"`
}

// response is the CLI's output document: either a solution tree or a
// diagnostic describing why one couldn't be built.
type response struct {
	Solution json.RawMessage `json:"solution,omitempty"`
	Error    *diagnostic     `json:"error,omitempty"`
}

type diagnostic struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Object  map[string]interface{} `json:"object,omitempty"`
}

func main() {
	flag.Parse()

	if lvl, ok := logging.ParseLevel(*LOG_LEVEL); ok {
		logging.SetLevel(lvl)
	} else {
		logging.Warna(func() string { return fmt.Sprintf("unrecognized loglevel %q, leaving default", *LOG_LEVEL) })
	}

	body, err := readInput(*INPUT)
	if err != nil {
		fatal(err)
	}

	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		fatal(fmt.Errorf("parsing request: %w", err))
	}

	out, err := run(context.Background(), &req)
	if err != nil {
		fatal(err)
	}
	if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
		fatal(err)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// run builds the CanonicalQuery and Params the request describes, calls
// planner.Plan, and falls back to planner.CollectionScan on a recoverable
// NoIndexedPlan error the way library callers are expected to.
func run(ctx context.Context, req *request) (*response, error) {
	pred, err := expression.Unmarshal(req.Predicate)
	if err != nil {
		return nil, fmt.Errorf("parsing predicate: %w", err)
	}

	query := &planner.CanonicalQuery{
		Namespace:           req.Namespace,
		Predicate:           pred,
		Sort:                toKeyElements(req.Sort),
		NaturalDirection:    parseNaturalDirection(req.Natural),
		MaxScan:             req.MaxScan,
		Tailable:            req.Tailable,
		ReturnKey:           req.ReturnKey,
		WantGeoNearPoint:    req.WantGeoNearPoint,
		WantGeoNearDistance: req.WantGeoNearDistance,
	}

	params := &planner.Params{
		NoBlockingSort:     *NO_BLOCKING_SORT,
		MaxScanToReturnOne: *FIND_ONE,
		Builder:            bounds.DefaultBuilder{},
	}

	logging.Infoa(func() string { return fmt.Sprintf("planning namespace=%s indices=%d", req.Namespace, len(req.Indices)) })

	solution, planErr := planner.Plan(ctx, query, req.Indices, params)
	if planErr == nil {
		return solutionResponse(solution)
	}

	perr, ok := planErr.(errors.Error)
	if !ok {
		return nil, planErr
	}
	if perr.Code() != errors.NoIndexedPlan {
		return &response{Error: &diagnostic{Code: perr.Code().String(), Message: perr.Error(), Object: perr.Object()}}, nil
	}

	logging.Infoa(func() string { return "no indexed plan, falling back to collection scan: " + perr.Error() })
	return solutionResponse(planner.CollectionScan(query, params))
}

func solutionResponse(op plan.Operator) (*response, error) {
	body, err := op.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshaling solution: %w", err)
	}
	return &response{Solution: body}, nil
}

func toKeyElements(fs []sortField) []index.KeyElement {
	if len(fs) == 0 {
		return nil
	}
	out := make([]index.KeyElement, len(fs))
	for i, f := range fs {
		dir := index.Ascending
		if f.Dir < 0 {
			dir = index.Descending
		}
		out[i] = index.KeyElement{Field: f.Field, Kind: index.Btree, Dir: dir}
	}
	return out
}

func parseNaturalDirection(s string) index.Direction {
	switch s {
	case "desc":
		return index.Descending
	case "asc":
		return index.Ascending
	default:
		return 0
	}
}

func fatal(err error) {
	logging.Fatala(func() string { return err.Error() })
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
