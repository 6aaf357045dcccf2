package model

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hepcomp/resource-model/model/capacity"
	"github.com/hepcomp/resource-model/model/ramp"
)

// Data origins used by cpu_time and the *_only_tiers lists.
const (
	OriginData = "data"
	OriginMC   = "mc"
)

// Parameters is the merged, validated model configuration.
// All top-level keys must be listed here to satisfy KnownFields(true) strict parsing.
type Parameters struct {
	StartYear     int   `yaml:"start_year" validate:"gt=0"`
	EndYear       int   `yaml:"end_year" validate:"gtefield=StartYear"`
	ShutdownYears []int `yaml:"shutdown_years"`

	TriggerRate  ramp.Ramp            `yaml:"trigger_rate" validate:"min=1"`
	LiveFraction ramp.Ramp            `yaml:"live_fraction" validate:"min=1"`
	MCEvolution  map[string]ramp.Ramp `yaml:"mc_evolution"` // era -> fraction of data events

	TierSizes map[string]ramp.Ramp            `yaml:"tier_sizes" validate:"min=1"` // tier -> bytes/event by kind
	CPUTime   map[string]map[string]ramp.Ramp `yaml:"cpu_time" validate:"min=1"`   // origin -> tier -> HS06*s/event by kind

	ImprovementFactors ImprovementFactors             `yaml:"improvement_factors"`
	CapacityModel      CapacityModel                  `yaml:"capacity_model"`
	SimpleCapacity     map[string]capacity.SimpleSpec `yaml:"simple_capacity" validate:"omitempty,dive"`
	StorageModel       StorageModelSpec               `yaml:"storage_model"`

	StaticDisk map[string]ramp.Ramp `yaml:"static_disk"`
	StaticTape map[string]ramp.Ramp `yaml:"static_tape"`
	LegacyDisk ramp.Ramp            `yaml:"legacyInfoDict"` // PB by year, reported as its own column

	NewDetectorYears []int   `yaml:"new_detector_years"`
	T0Factor         float64 `yaml:"t0_factor" validate:"gt=0"`
	CPUEfficiency    float64 `yaml:"cpu_efficiency" validate:"gt=0,lte=1"`
	USFractionT1T2   float64 `yaml:"us_fraction_T1T2" validate:"gte=0,lte=1"`

	DiskFillFactor          float64 `yaml:"disk_fill_factor" validate:"gt=0,lte=1"`
	Tier1DiskFraction       float64 `yaml:"tier1_disk_fraction" validate:"gte=0,lte=1"`
	Tier1DiskBufferFraction float64 `yaml:"tier1_disk_buffer_fraction" validate:"gte=0"`
	TapeFillFactor          float64 `yaml:"tape_fill_factor" validate:"gt=0,lte=1"`

	DataOnlyTiers []string `yaml:"data_only_tiers"`
	MCOnlyTiers   []string `yaml:"mc_only_tiers"`

	AnalysisSet              YearSets  `yaml:"AnalysisSet"`
	AnalysisCPUPerEvent      ramp.Ramp `yaml:"AnalysisCPUPerEvent"`
	AnalysisReadsPerYearData ramp.Ramp `yaml:"AnalysisReadsPerYearData"`
	AnalysisReadsPerYearMC   ramp.Ramp `yaml:"AnalysisReadsPerYearMC"`
	AnalysisCPUScaledByReco  float64   `yaml:"AnalysisCPUScaledByReco" validate:"gte=0"`
	FirstYearToSpreadRereco  int       `yaml:"first_year_to_spread_rereco_over_two_years"` // 0 = never spread

	Eras                      EraSpec             `yaml:"eras"`
	SimWorkflow               []string            `yaml:"sim_workflow"`
	RecoTier                  string              `yaml:"reco_tier"`
	DCGroups                  map[string][]string `yaml:"dc_groups"`
	ReplicaCountExcludedTiers []string            `yaml:"replica_count_excluded_tiers"`
}

// ImprovementFactors holds yearly technology and software gains.
type ImprovementFactors struct {
	Hardware       float64              `yaml:"hardware" validate:"gt=0"`
	Disk           float64              `yaml:"disk" validate:"gt=0"`
	Tape           float64              `yaml:"tape" validate:"gt=0"`
	SoftwareByKind map[string]ramp.Ramp `yaml:"software_by_kind" validate:"min=1"`
}

// For returns the hardware improvement factor of a capacity resource.
func (f ImprovementFactors) For(resource string) float64 {
	switch resource {
	case capacity.Disk:
		return f.Disk
	case capacity.Tape:
		return f.Tape
	default:
		return f.Hardware
	}
}

// CapacityModel configures the ledger capacity model, flat per resource.
type CapacityModel struct {
	CPUYear      int       `yaml:"cpu_year" validate:"gt=0"`
	CPUStart     float64   `yaml:"cpu_start" validate:"gte=0"`
	CPULifetime  int       `yaml:"cpu_lifetime" validate:"gt=0"`
	CPUDelta     ramp.Ramp `yaml:"cpu_delta"`
	DiskYear     int       `yaml:"disk_year" validate:"gt=0"`
	DiskStart    float64   `yaml:"disk_start" validate:"gte=0"`
	DiskLifetime int       `yaml:"disk_lifetime" validate:"gt=0"`
	DiskDelta    ramp.Ramp `yaml:"disk_delta"`
	TapeYear     int       `yaml:"tape_year" validate:"gt=0"`
	TapeStart    float64   `yaml:"tape_start" validate:"gte=0"`
	TapeLifetime int       `yaml:"tape_lifetime" validate:"gt=0"`
	TapeDelta    ramp.Ramp `yaml:"tape_delta"`
}

// Ledger returns the ledger spec for cpu, disk or tape.
func (c CapacityModel) Ledger(resource string) capacity.LedgerSpec {
	switch resource {
	case capacity.Disk:
		return capacity.LedgerSpec{Year: c.DiskYear, Start: c.DiskStart, Lifetime: c.DiskLifetime, Delta: c.DiskDelta}
	case capacity.Tape:
		return capacity.LedgerSpec{Year: c.TapeYear, Start: c.TapeStart, Lifetime: c.TapeLifetime, Delta: c.TapeDelta}
	default:
		return capacity.LedgerSpec{Year: c.CPUYear, Start: c.CPUStart, Lifetime: c.CPULifetime, Delta: c.CPUDelta}
	}
}

// StorageModelSpec configures retention by age (years since production).
type StorageModelSpec struct {
	Versions     map[string][]float64 `yaml:"versions" validate:"min=1"`
	DiskReplicas map[string][]float64 `yaml:"disk_replicas" validate:"min=1"`
	TapeReplicas map[string][]float64 `yaml:"tape_replicas"`
	DiskScaling  map[string]ramp.Ramp `yaml:"disk_scaling"`
	TapeScaling  map[string]ramp.Ramp `yaml:"tape_scaling"`
	TapePolicy   string               `yaml:"tape_policy" validate:"omitempty,oneof=per_age pinned"`
}

// EraSpec controls how kinds collapse onto detector eras.
type EraSpec struct {
	Current         string `yaml:"current"`
	Future          string `yaml:"future"`
	FutureThreshold int    `yaml:"future_threshold"`
}

// YearSets maps a year to a list of years, e.g. the produced years analysed
// in that year. Keys and members may be written as strings or numbers.
type YearSets map[int][]int

// UnmarshalYAML decodes a mapping of year to a sequence of years.
func (s *YearSets) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of year to year list", value.Line)
	}
	out := make(YearSets, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		year, err := strconv.Atoi(k.Value)
		if err != nil {
			return fmt.Errorf("line %d: key %q is not a year", k.Line, k.Value)
		}
		if v.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: value for %d must be a list of years", v.Line, year)
		}
		members := make([]int, 0, len(v.Content))
		for _, m := range v.Content {
			y, err := strconv.Atoi(m.Value)
			if err != nil {
				return fmt.Errorf("line %d: member %q is not a year", m.Line, m.Value)
			}
			members = append(members, y)
		}
		out[year] = members
	}
	*s = out
	return nil
}

// At returns the set defined at the greatest key <= year, or nil.
func (s YearSets) At(year int) []int {
	best, found := 0, false
	for k := range s {
		if k <= year && (!found || k > best) {
			best, found = k, true
		}
	}
	if !found {
		return nil
	}
	return s[best]
}

// Default values applied after decoding when a key is absent.
var (
	DefaultEras              = EraSpec{Current: "2017", Future: "2026", FutureThreshold: 2025}
	DefaultSimWorkflow       = []string{"GENSIM", "DIGI", "RECO"}
	DefaultRecoTier          = "RECO"
	DefaultReplicaExclusions = []string{"RAW", "GENSIM", "USER"}
	DefaultDCGroups          = map[string][]string{
		GroupGeneration: {"GEN"},
		GroupSimulation: {"SIM", "GENSIM"},
		GroupDigiReco:   {"DIGI", "RECO"},
	}
)

func (p *Parameters) applyDefaults() {
	if p.Eras.Current == "" {
		p.Eras.Current = DefaultEras.Current
	}
	if p.Eras.Future == "" {
		p.Eras.Future = DefaultEras.Future
	}
	if p.Eras.FutureThreshold == 0 {
		p.Eras.FutureThreshold = DefaultEras.FutureThreshold
	}
	if len(p.SimWorkflow) == 0 {
		p.SimWorkflow = slices.Clone(DefaultSimWorkflow)
	}
	if p.RecoTier == "" {
		p.RecoTier = DefaultRecoTier
	}
	if p.ReplicaCountExcludedTiers == nil {
		p.ReplicaCountExcludedTiers = slices.Clone(DefaultReplicaExclusions)
	}
	if len(p.DCGroups) == 0 {
		p.DCGroups = make(map[string][]string, len(DefaultDCGroups))
		for k, v := range DefaultDCGroups {
			p.DCGroups[k] = slices.Clone(v)
		}
	}
	if p.StorageModel.TapePolicy == "" {
		p.StorageModel.TapePolicy = TapePolicyPerAge
	}
	if p.SimpleCapacity == nil {
		p.SimpleCapacity = make(map[string]capacity.SimpleSpec)
	}
	if _, ok := p.SimpleCapacity[capacity.CPU]; !ok {
		p.SimpleCapacity[capacity.CPU] = capacity.DefaultCPUSimple
	}
}

// Years returns every year of the horizon in ascending order.
func (p *Parameters) Years() []int {
	years := make([]int, 0, p.EndYear-p.StartYear+1)
	for y := p.StartYear; y <= p.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// InHorizon reports whether year lies in [StartYear, EndYear].
func (p *Parameters) InHorizon(year int) bool {
	return year >= p.StartYear && year <= p.EndYear
}

// EraNames returns the simulation eras of mc_evolution in ascending order.
func (p *Parameters) EraNames() []string {
	eras := make([]string, 0, len(p.MCEvolution))
	for era := range p.MCEvolution {
		eras = append(eras, era)
	}
	sort.Strings(eras)
	return eras
}

// DatasetAnalysis reports whether the explicit analysis-set model is configured.
func (p *Parameters) DatasetAnalysis() bool {
	return len(p.AnalysisSet) > 0
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	// report yaml key names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks field ranges and cross-field consistency.
// Returns a *ConfigurationError listing all problems, or nil.
func (p *Parameters) Validate() error {
	var problems []string

	if err := structValidator.Struct(p); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				problems = append(problems, describeFieldError(fe))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	for era := range p.MCEvolution {
		if _, err := strconv.Atoi(era); err != nil {
			problems = append(problems, fmt.Sprintf("mc_evolution: era %q is not a year", era))
		}
		if len(p.MCEvolution[era]) == 0 {
			problems = append(problems, fmt.Sprintf("mc_evolution.%s: ramp has no control points", era))
		}
	}
	if _, err := strconv.Atoi(p.Eras.Future); err != nil {
		problems = append(problems, fmt.Sprintf("eras.future: %q is not a year", p.Eras.Future))
	}
	if _, err := strconv.Atoi(p.Eras.Current); err != nil {
		problems = append(problems, fmt.Sprintf("eras.current: %q is not a year", p.Eras.Current))
	}

	for name, r := range map[string]ramp.Ramp{"trigger_rate": p.TriggerRate, "live_fraction": p.LiveFraction} {
		if _, _, err := r.Step(p.StartYear); err != nil && len(r) > 0 {
			problems = append(problems, fmt.Sprintf("%s: no control point at or before start_year %d", name, p.StartYear))
		}
	}

	for _, origin := range slices.Sorted(maps.Keys(p.CPUTime)) {
		if origin != OriginData && origin != OriginMC {
			problems = append(problems, fmt.Sprintf("cpu_time: unknown origin %q; valid: data, mc", origin))
		}
	}

	for _, res := range capacity.Resources {
		spec := p.CapacityModel.Ledger(res)
		if spec.Year > p.StartYear {
			problems = append(problems, fmt.Sprintf("capacity_model.%s_year %d must not be after start_year %d", res, spec.Year, p.StartYear))
		}
	}

	for _, tier := range slices.Sorted(maps.Keys(p.TierSizes)) {
		if _, ok := p.StorageModel.Versions[tier]; !ok {
			problems = append(problems, fmt.Sprintf("storage_model.versions: missing tier %q", tier))
		}
		if _, ok := p.StorageModel.DiskReplicas[tier]; !ok {
			problems = append(problems, fmt.Sprintf("storage_model.disk_replicas: missing tier %q", tier))
		}
	}
	for name, seqs := range map[string]map[string][]float64{
		"versions":      p.StorageModel.Versions,
		"disk_replicas": p.StorageModel.DiskReplicas,
		"tape_replicas": p.StorageModel.TapeReplicas,
	} {
		for tier, seq := range seqs {
			for i, v := range seq {
				if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					problems = append(problems, fmt.Sprintf("storage_model.%s.%s[%d] must be a finite non-negative number, got %v", name, tier, i, v))
				}
			}
		}
	}

	if p.DatasetAnalysis() {
		if len(p.AnalysisCPUPerEvent) == 0 {
			problems = append(problems, "AnalysisCPUPerEvent is required when AnalysisSet is configured")
		}
		if len(p.AnalysisReadsPerYearData) == 0 {
			problems = append(problems, "AnalysisReadsPerYearData is required when AnalysisSet is configured")
		}
		if len(p.AnalysisReadsPerYearMC) == 0 {
			problems = append(problems, "AnalysisReadsPerYearMC is required when AnalysisSet is configured")
		}
		for _, year := range slices.Sorted(maps.Keys(p.AnalysisSet)) {
			for _, member := range p.AnalysisSet[year] {
				if !p.InHorizon(member) {
					problems = append(problems, fmt.Sprintf("AnalysisSet.%d: produced year %d outside [%d, %d]", year, member, p.StartYear, p.EndYear))
				}
			}
		}
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Parameters.")
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s is required", key)
	case "oneof":
		return fmt.Sprintf("%s: unknown value %v; valid: %s", key, fe.Value(), fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must be >= %s, got %v", key, fe.Param(), fe.Value())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s must satisfy %s=%s, got %v", key, fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Sprintf("%s must satisfy %s, got %v", key, fe.Tag(), fe.Value())
	}
}
