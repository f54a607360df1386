package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sort"

	"substrace/internal/diag"
	"substrace/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

// Unit bundles the diagnostics of one analysed input with its files.
type Unit struct {
	Path  string
	Bag   *diag.Bag
	Files *source.FileSet
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	ShortDescription sarifMessage      `json:"shortDescription"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        int             `json:"ruleIndex"`
	Level            string          `json:"level"`
	Message          sarifMessage    `json:"message"`
	Locations        []sarifLocation `json:"locations,omitempty"`
	RelatedLocations []sarifLocation `json:"relatedLocations,omitempty"`
	Fixes            []sarifFix      `json:"fixes,omitempty"`
}

type sarifLocation struct {
	ID               int                   `json:"id,omitempty"`
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
	Message          *sarifMessage         `json:"message,omitempty"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine,omitempty"`
	StartColumn uint32 `json:"startColumn,omitempty"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0). All units go into
// one run; rules are collected from the codes that occur.
func Sarif(w io.Writer, units []Unit, meta SarifRunMeta) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           meta.ToolName,
			Version:        meta.ToolVersion,
			InformationURI: meta.InformationURI,
		}},
		Results: []sarifResult{},
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}

	type ruleKey struct {
		code diag.Code
		lint string
	}
	var keys []ruleKey
	seen := make(map[ruleKey]bool)
	for _, u := range units {
		for _, d := range u.Bag.Items() {
			if d.Code == diag.EngTimings {
				continue
			}
			k := ruleKey{d.Code, d.Lint}
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].code != keys[j].code {
			return keys[i].code < keys[j].code
		}
		return keys[i].lint < keys[j].lint
	})
	index := make(map[ruleKey]int, len(keys))
	run.Tool.Driver.Rules = make([]sarifRule, 0, len(keys))
	for i, k := range keys {
		index[k] = i
		rule := sarifRule{ID: k.code.ID(), Name: k.lint, ShortDescription: sarifMessage{Text: k.code.Title()}}
		if k.lint != "" {
			rule.Properties = map[string]string{"lint": k.lint}
		}
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, rule)
	}

	for _, u := range units {
		for i := range u.Bag.Items() {
			d := &u.Bag.Items()[i]
			if d.Code == diag.EngTimings {
				continue
			}
			run.Results = append(run.Results, sarifResultFor(d, u, index[ruleKey{d.Code, d.Lint}]))
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}

func sarifResultFor(d *diag.Diagnostic, u Unit, rule int) sarifResult {
	text := d.Message
	if d.Help != "" {
		text += "\nhelp: " + d.Help
	}
	res := sarifResult{
		RuleID:    d.Code.ID(),
		RuleIndex: rule,
		Level:     d.Severity.SarifLevel(),
		Message:   sarifMessage{Text: text},
	}
	if located(d, u.Files) {
		res.Locations = []sarifLocation{{PhysicalLocation: sarifPhysical(u.Files, d.Primary)}}
	} else if u.Path != "" {
		res.Locations = []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(u.Path)},
		}}}
	}
	for i, n := range d.Notes {
		if u.Files == nil || u.Files.Get(n.Span.File) == nil {
			continue
		}
		msg := sarifMessage{Text: n.Msg}
		res.RelatedLocations = append(res.RelatedLocations, sarifLocation{
			ID:               i + 1,
			PhysicalLocation: sarifPhysical(u.Files, n.Span),
			Message:          &msg,
		})
	}
	for _, f := range d.Fixes {
		if sf, ok := sarifFixFor(u.Files, f); ok {
			res.Fixes = append(res.Fixes, sf)
		}
	}
	return res
}

func sarifFixFor(fs *source.FileSet, f diag.Fix) (sarifFix, bool) {
	if fs == nil || len(f.Edits) == 0 {
		return sarifFix{}, false
	}
	byFile := make(map[source.FileID]int)
	out := sarifFix{Description: sarifMessage{Text: f.Title}}
	for _, e := range f.Edits {
		if fs.Get(e.Span.File) == nil {
			return sarifFix{}, false
		}
		idx, ok := byFile[e.Span.File]
		if !ok {
			idx = len(out.ArtifactChanges)
			byFile[e.Span.File] = idx
			out.ArtifactChanges = append(out.ArtifactChanges, sarifArtifactChange{
				ArtifactLocation: sarifArtifactLocation{URI: sarifURI(fs, e.Span.File)},
			})
		}
		rep := sarifReplacement{DeletedRegion: *sarifRegionFor(fs, e.Span)}
		if e.NewText != "" {
			rep.InsertedContent = &sarifMessage{Text: e.NewText}
		}
		out.ArtifactChanges[idx].Replacements = append(out.ArtifactChanges[idx].Replacements, rep)
	}
	return out, true
}

func sarifPhysical(fs *source.FileSet, sp source.Span) sarifPhysicalLocation {
	return sarifPhysicalLocation{
		ArtifactLocation: sarifArtifactLocation{URI: sarifURI(fs, sp.File)},
		Region:           sarifRegionFor(fs, sp),
	}
}

func sarifRegionFor(fs *source.FileSet, sp source.Span) *sarifRegion {
	start, end := fs.Resolve(sp)
	return &sarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
		ByteOffset:  sp.Start,
		ByteLength:  sp.Len(),
	}
}

func sarifURI(fs *source.FileSet, id source.FileID) string {
	return filepath.ToSlash(fs.Get(id).FormatPath("relative", fs.BaseDir()))
}
