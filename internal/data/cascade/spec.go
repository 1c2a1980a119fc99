package cascade

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

const leadCascadePlanEnv = "LEAD_CASCADE_PLAN_YAML"

//go:embed lead_cascade.yaml
var leadCascadeSpecFS embed.FS

type yamlPlanSpec struct {
	Plan        string               `yaml:"plan"`
	Version     int                  `yaml:"version"`
	Root        string               `yaml:"root"`
	Collections []yamlCollectionSpec `yaml:"collections"`
	Steps       []yamlStepSpec       `yaml:"steps"`
}

type yamlCollectionSpec struct {
	Name       string   `yaml:"name"`
	References []string `yaml:"references"`
}

type yamlStepSpec struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	Collection  string `yaml:"collection"`
	Select      string `yaml:"select"`
	Filter      string `yaml:"filter"`
	Source      string `yaml:"source"`
	Produces    string `yaml:"produces"`
	Criticality string `yaml:"criticality"`
	Batch       string `yaml:"batch"`
	Enabled     *bool  `yaml:"enabled"`
}

var leadPlanOnce sync.Once
var leadPlanCache *Plan
var leadPlanErr error

// LeadPlan returns the lead cascade plan. The embedded document (or the file
// named by LEAD_CASCADE_PLAN_YAML) is loaded once; when it cannot be read or
// does not validate the compiled-in plan is used instead.
func LeadPlan(log *logger.Logger) *Plan {
	leadPlanOnce.Do(func() {
		leadPlanCache, leadPlanErr = loadLeadPlan()
	})
	if leadPlanErr != nil {
		if log != nil {
			log.Warn("cascade: lead plan load failed; using fallback", "error", leadPlanErr)
		}
		return FallbackLeadPlan()
	}
	return leadPlanCache
}

func loadLeadPlan() (*Plan, error) {
	data, err := readLeadCascadeSpec()
	if err != nil {
		return nil, err
	}
	return ParsePlan(data)
}

func readLeadCascadeSpec() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(leadCascadePlanEnv)); path != "" {
		return os.ReadFile(path)
	}
	return leadCascadeSpecFS.ReadFile("lead_cascade.yaml")
}

// ParsePlan decodes and validates a plan document.
func ParsePlan(data []byte) (*Plan, error) {
	var spec yamlPlanSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if strings.TrimSpace(spec.Plan) == "" {
		return nil, errors.New("cascade: plan name is required")
	}
	if spec.Version != 1 {
		return nil, fmt.Errorf("cascade: unsupported plan version %d", spec.Version)
	}

	p := &Plan{
		Name: strings.TrimSpace(spec.Plan),
		Root: strings.TrimSpace(spec.Root),
	}
	for _, c := range spec.Collections {
		refs := make([]string, 0, len(c.References))
		for _, r := range c.References {
			if r = strings.TrimSpace(r); r != "" {
				refs = append(refs, r)
			}
		}
		p.Collections = append(p.Collections, Collection{Name: strings.TrimSpace(c.Name), References: refs})
	}
	for _, s := range spec.Steps {
		if s.Enabled != nil && !*s.Enabled {
			continue
		}
		p.Steps = append(p.Steps, Step{
			Name:         strings.TrimSpace(s.Name),
			Kind:         StepKind(strings.TrimSpace(s.Kind)),
			Collection:   strings.TrimSpace(s.Collection),
			FilterColumn: strings.TrimSpace(s.Filter),
			SelectColumn: strings.TrimSpace(s.Select),
			Source:       strings.TrimSpace(s.Source),
			Produces:     strings.TrimSpace(s.Produces),
			Criticality:  Criticality(strings.TrimSpace(s.Criticality)),
			Batch:        strings.TrimSpace(s.Batch),
		})
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

var leadCollections = []Collection{
	{Name: "lead"},
	{Name: "lead_tag"},
	{Name: "conversation", References: []string{"lead"}},
	{Name: "message", References: []string{"conversation"}},
	{Name: "message_evaluation", References: []string{"message"}},
	{Name: "response_evaluation", References: []string{"conversation"}},
	{Name: "audio_message", References: []string{"message"}},
	{Name: "agent_message", References: []string{"conversation"}},
	{Name: "lead_interaction", References: []string{"lead"}},
	{Name: "lead_evaluation", References: []string{"lead"}},
	{Name: "lead_stage_history", References: []string{"lead"}},
	{Name: "lead_field_change", References: []string{"lead"}},
	{Name: "lead_tag_relation", References: []string{"lead", "lead_tag"}},
	{Name: "lead_comment", References: []string{"lead"}},
	{Name: "lead_temperature_history", References: []string{"lead"}},
	{Name: "lead_pii_token", References: []string{"lead"}},
	{Name: "lead_personal_data", References: []string{"lead"}},
}

// FallbackLeadPlan is the compiled-in copy of lead_cascade.yaml.
func FallbackLeadPlan() *Plan {
	leadDirect := func(name, collection string) Step {
		return Step{Name: name, Kind: StepDelete, Collection: collection, FilterColumn: "lead_id",
			Source: SourceRoot, Criticality: BestEffort, Batch: "lead_dependents"}
	}
	collections := make([]Collection, len(leadCollections))
	copy(collections, leadCollections)
	return &Plan{
		Name:        "lead_cascade",
		Root:        "lead",
		Collections: collections,
		Steps: []Step{
			{Name: "discover_conversations", Kind: StepDiscover, Collection: "conversation", FilterColumn: "lead_id",
				Source: SourceRoot, Produces: "conversation_ids", Criticality: Critical},
			{Name: "discover_messages", Kind: StepDiscover, Collection: "message", FilterColumn: "conversation_id",
				Source: "conversation_ids", Produces: "message_ids", Criticality: Critical},
			{Name: "discover_evaluated_messages", Kind: StepDiscover, Collection: "message_evaluation",
				SelectColumn: "message_id", FilterColumn: "message_id",
				Source: "message_ids", Produces: "evaluated_message_ids", Criticality: BestEffort},
			{Name: "delete_message_evaluations", Kind: StepDelete, Collection: "message_evaluation", FilterColumn: "message_id",
				Source: "evaluated_message_ids", Criticality: BestEffort, Batch: "message_dependents"},
			{Name: "delete_response_evaluations", Kind: StepDelete, Collection: "response_evaluation", FilterColumn: "conversation_id",
				Source: "conversation_ids", Criticality: BestEffort, Batch: "message_dependents"},
			{Name: "delete_audio_messages", Kind: StepDelete, Collection: "audio_message", FilterColumn: "message_id",
				Source: "message_ids", Criticality: BestEffort, Batch: "message_dependents"},
			{Name: "delete_agent_messages", Kind: StepDelete, Collection: "agent_message", FilterColumn: "conversation_id",
				Source: "conversation_ids", Criticality: BestEffort, Batch: "message_dependents"},
			{Name: "delete_messages", Kind: StepDelete, Collection: "message", FilterColumn: "id",
				Source: "message_ids", Criticality: Critical},
			{Name: "delete_conversations", Kind: StepDelete, Collection: "conversation", FilterColumn: "id",
				Source: "conversation_ids", Criticality: BestEffort},
			leadDirect("delete_lead_interactions", "lead_interaction"),
			leadDirect("delete_lead_evaluations", "lead_evaluation"),
			leadDirect("delete_lead_stage_history", "lead_stage_history"),
			leadDirect("delete_lead_field_changes", "lead_field_change"),
			leadDirect("delete_lead_tag_relations", "lead_tag_relation"),
			leadDirect("delete_lead_comments", "lead_comment"),
			leadDirect("delete_lead_temperature_history", "lead_temperature_history"),
			leadDirect("delete_lead_pii_tokens", "lead_pii_token"),
			leadDirect("delete_lead_personal_data", "lead_personal_data"),
			{Name: "delete_lead", Kind: StepRoot, Collection: "lead", FilterColumn: "id",
				Source: SourceRoot, Criticality: Critical},
		},
	}
}
