package cascade

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Criticality string

const (
	Critical   Criticality = "critical"
	BestEffort Criticality = "best_effort"
)

type StepKind string

const (
	// StepDiscover reads identifiers that later steps filter on.
	StepDiscover StepKind = "discover"
	// StepDelete removes rows of a dependent collection.
	StepDelete StepKind = "delete"
	// StepRoot removes the root entity itself. Zero rows means not found.
	StepRoot StepKind = "root"
)

// SourceRoot is the filter source that resolves to the root id.
const SourceRoot = "root"

const defaultSelectColumn = "id"

// Step is one unit of cascade work.
type Step struct {
	Name         string
	Kind         StepKind
	Collection   string
	FilterColumn string
	// SelectColumn is the column read by a discover step. Defaults to "id".
	SelectColumn string
	// Source is SourceRoot or the Produces key of an earlier discover step.
	Source      string
	Produces    string
	Criticality Criticality
	// Batch groups contiguous best-effort deletes that may run in any order.
	Batch string
}

func (s Step) selectColumn() string {
	if strings.TrimSpace(s.SelectColumn) == "" {
		return defaultSelectColumn
	}
	return s.SelectColumn
}

// Collection is a node of the foreign key graph.
type Collection struct {
	Name       string
	References []string
}

// Plan is the ordered cascade for one root collection.
type Plan struct {
	Name        string
	Root        string
	Collections []Collection
	Steps       []Step
}

var identRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Validate checks ordering and shape. A plan that passes never deletes a
// collection before the collections that reference it.
func (p *Plan) Validate() error {
	if p == nil {
		return errors.New("cascade: nil plan")
	}
	if !identRE.MatchString(p.Root) {
		return fmt.Errorf("cascade: invalid root collection %q", p.Root)
	}
	if len(p.Steps) == 0 {
		return errors.New("cascade: no steps defined")
	}

	refs := map[string][]string{}
	for _, c := range p.Collections {
		if !identRE.MatchString(c.Name) {
			return fmt.Errorf("cascade: invalid collection name %q", c.Name)
		}
		if _, dup := refs[c.Name]; dup {
			return fmt.Errorf("cascade: duplicate collection %s", c.Name)
		}
		refs[c.Name] = c.References
	}
	if _, ok := refs[p.Root]; !ok {
		return fmt.Errorf("cascade: root collection %s not declared", p.Root)
	}
	for name, targets := range refs {
		for _, t := range targets {
			if _, ok := refs[t]; !ok {
				return fmt.Errorf("cascade: collection %s references undeclared %s", name, t)
			}
		}
	}

	names := map[string]bool{}
	produced := map[string]int{}
	deletedAt := map[string]int{}
	closedBatches := map[string]bool{}
	rootSteps := 0
	prevBatch := ""

	for i, s := range p.Steps {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("cascade: step %d has no name", i)
		}
		if names[s.Name] {
			return fmt.Errorf("cascade: duplicate step name %s", s.Name)
		}
		names[s.Name] = true

		if _, ok := refs[s.Collection]; !ok {
			return fmt.Errorf("cascade: step %s: undeclared collection %q", s.Name, s.Collection)
		}
		if !identRE.MatchString(s.FilterColumn) {
			return fmt.Errorf("cascade: step %s: invalid filter column %q", s.Name, s.FilterColumn)
		}
		if !identRE.MatchString(s.selectColumn()) {
			return fmt.Errorf("cascade: step %s: invalid select column %q", s.Name, s.SelectColumn)
		}
		switch s.Criticality {
		case Critical, BestEffort:
		default:
			return fmt.Errorf("cascade: step %s: unknown criticality %q", s.Name, s.Criticality)
		}

		if s.Source != SourceRoot {
			at, ok := produced[s.Source]
			if !ok {
				return fmt.Errorf("cascade: step %s: source %q is not produced by an earlier step", s.Name, s.Source)
			}
			if s.Batch != "" && p.Steps[at].Batch == s.Batch {
				return fmt.Errorf("cascade: step %s: consumes %s produced in the same batch", s.Name, s.Source)
			}
		}

		if s.Batch != prevBatch && prevBatch != "" {
			closedBatches[prevBatch] = true
		}
		if s.Batch != "" {
			if closedBatches[s.Batch] {
				return fmt.Errorf("cascade: step %s: batch %s is not contiguous", s.Name, s.Batch)
			}
			if s.Kind != StepDelete || s.Criticality != BestEffort {
				return fmt.Errorf("cascade: step %s: only best-effort deletes may be batched", s.Name)
			}
		}
		prevBatch = s.Batch

		switch s.Kind {
		case StepDiscover:
			if !identRE.MatchString(s.Produces) {
				return fmt.Errorf("cascade: step %s: discover step must declare produces", s.Name)
			}
			if _, dup := produced[s.Produces]; dup || s.Produces == SourceRoot {
				return fmt.Errorf("cascade: step %s: key %s already produced", s.Name, s.Produces)
			}
			produced[s.Produces] = i
		case StepDelete, StepRoot:
			if s.Produces != "" {
				return fmt.Errorf("cascade: step %s: only discover steps produce keys", s.Name)
			}
			if s.Kind == StepRoot {
				rootSteps++
				if i != len(p.Steps)-1 {
					return fmt.Errorf("cascade: root step %s must be last", s.Name)
				}
				if s.Collection != p.Root || s.Source != SourceRoot || s.Criticality != Critical {
					return fmt.Errorf("cascade: root step %s must be a critical delete of %s by the root id", s.Name, p.Root)
				}
			}
			if _, dup := deletedAt[s.Collection]; dup {
				return fmt.Errorf("cascade: step %s: collection %s deleted twice", s.Name, s.Collection)
			}
			// A collection may not be deleted once something it references is gone.
			for _, parent := range refs[s.Collection] {
				if j, gone := deletedAt[parent]; gone {
					return fmt.Errorf("cascade: step %s deletes %s after %s (step %s) which it references",
						s.Name, s.Collection, parent, p.Steps[j].Name)
				}
			}
			deletedAt[s.Collection] = i
		default:
			return fmt.Errorf("cascade: step %s: unknown kind %q", s.Name, s.Kind)
		}
	}
	if rootSteps != 1 {
		return fmt.Errorf("cascade: expected exactly one root step, found %d", rootSteps)
	}

	// Inside a batch no step may delete a collection referenced by another
	// step of the same batch.
	for _, seg := range p.segments() {
		if len(seg) < 2 {
			continue
		}
		inBatch := map[string]string{}
		for _, s := range seg {
			inBatch[s.Collection] = s.Name
		}
		for _, s := range seg {
			for _, parent := range refs[s.Collection] {
				if other, ok := inBatch[parent]; ok {
					return fmt.Errorf("cascade: batch %s: %s and %s are ordered by a reference", s.Batch, s.Name, other)
				}
			}
		}
	}

	// Everything that transitively references the root must be deleted.
	for _, name := range p.dependentsOfRoot(refs) {
		if _, ok := deletedAt[name]; !ok {
			return fmt.Errorf("cascade: collection %s references %s but is never deleted", name, p.Root)
		}
	}
	return nil
}

func (p *Plan) dependentsOfRoot(refs map[string][]string) []string {
	reaches := map[string]bool{p.Root: true}
	for changed := true; changed; {
		changed = false
		for name, targets := range refs {
			if reaches[name] {
				continue
			}
			for _, t := range targets {
				if reaches[t] {
					reaches[name] = true
					changed = true
					break
				}
			}
		}
	}
	out := make([]string, 0, len(reaches))
	for _, c := range p.Collections {
		if c.Name != p.Root && reaches[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}

// segments splits the steps into execution units: a single unbatched step,
// or a run of contiguous steps sharing a batch name.
func (p *Plan) segments() [][]Step {
	var out [][]Step
	for i := 0; i < len(p.Steps); {
		s := p.Steps[i]
		if s.Batch == "" {
			out = append(out, []Step{s})
			i++
			continue
		}
		j := i
		for j < len(p.Steps) && p.Steps[j].Batch == s.Batch {
			j++
		}
		out = append(out, p.Steps[i:j])
		i = j
	}
	return out
}

// StepDescription is the caller-facing view of a plan step.
type StepDescription struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Collection  string `json:"collection"`
	Filter      string `json:"filter"`
	Source      string `json:"source"`
	Produces    string `json:"produces,omitempty"`
	Criticality string `json:"criticality"`
	Batch       string `json:"batch,omitempty"`
}

func (p *Plan) Describe() []StepDescription {
	if p == nil {
		return nil
	}
	out := make([]StepDescription, 0, len(p.Steps))
	for _, s := range p.Steps {
		filter := s.Collection + "." + s.FilterColumn
		if s.Kind == StepDiscover {
			filter = s.Collection + "." + s.selectColumn() + " where " + s.FilterColumn
		}
		out = append(out, StepDescription{
			Name:        s.Name,
			Kind:        string(s.Kind),
			Collection:  s.Collection,
			Filter:      filter,
			Source:      s.Source,
			Produces:    s.Produces,
			Criticality: string(s.Criticality),
			Batch:       s.Batch,
		})
	}
	return out
}
