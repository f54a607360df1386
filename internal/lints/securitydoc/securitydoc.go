// Package securitydoc checks item documentation: storage declared with a
// hasher that is weak against attacker-chosen keys must explain itself in a
// `# Security` section, and inline code must have balanced backticks.
package securitydoc

import (
	"fmt"

	"substrace/internal/diag"
	"substrace/internal/docs"
	"substrace/internal/fix"
	"substrace/internal/hir"
	"substrace/internal/lint"
	"substrace/internal/paths"
)

var securitySection = []string{"/// # Security", "///", "/// <describe why this hasher is safe here>"}

// MissingSecurityDoc requires the Security heading on insecurely hashed storage.
var MissingSecurityDoc = &lint.Lint{
	Name:    "missing_security_doc",
	Code:    diag.DocMissingSecurity,
	Default: lint.Deny,
	Desc:    "using the Identity or Twox hashers requires a doc describing their secure usage",
	Explain: `Twox64Concat, Twox128, Twox256 and Identity are fast but not
cryptographic: if users control the keys they can craft collisions or
unbalance the storage trie. Such storage must carry a "# Security" section
explaining why the keys are safe.

    /// # Security
    ///
    /// Keys are account ids checked against the signature of the caller.
    #[pallet::storage]
    pub type Nonces<T> = StorageMap<_, Twox64Concat, T::AccountId, u64>;

Items that also use raw #[doc = "..."] attributes are assumed documented
unless [docs] mixed_raw = "analyze" is set.`,
}

// UnbalancedBackticks flags paragraphs with an odd number of literal backticks.
var UnbalancedBackticks = &lint.Lint{
	Name:    "unbalanced_backticks",
	Code:    diag.DocUnbalancedBackticks,
	Default: lint.Warn,
	Desc:    "a paragraph of documentation contains an unmatched backtick",
	Explain: `A backtick without a partner renders literally and usually means an
inline code span was not closed:

    /// Returns the ` + "`" + `Balance of the account.

Backticks inside fenced code blocks are not counted.`,
}

// Pass checks the docs of every item and of the crate itself.
type Pass struct {
	mode docs.MixedRaw
}

// New creates the pass.
func New(mode docs.MixedRaw) *Pass { return &Pass{mode: mode} }

func (*Pass) Name() string { return "security-doc" }
func (*Pass) Lints() []*lint.Lint {
	return []*lint.Lint{MissingSecurityDoc, UnbalancedBackticks}
}

func (p *Pass) EnterCrate(cx *lint.Context, c *hir.Crate) error {
	p.reportBackticks(cx, docs.Check(c.Docs, c.Attrs, p.mode))
	return nil
}

func (p *Pass) EnterItem(cx *lint.Context, it *hir.Item) error {
	res := docs.Check(it.Docs, it.Attrs, p.mode)
	p.reportBackticks(cx, res)

	if it.Kind != hir.ItemTypeAlias || res.Security {
		return nil
	}
	alias, ok := it.Data.(hir.TypeAliasData)
	if !ok {
		return nil
	}
	container, ok := cx.TypeDef(alias.Target)
	if !ok || !paths.StorageContainers.Contains(container) {
		return nil
	}
	hasher, hasherRef, ok := insecureHasher(cx, alias.Target.Args)
	if !ok {
		return nil
	}

	fs := cx.Files()
	primary := fs.FirstLine(it.Span)
	cx.Lint(MissingSecurityDoc, primary,
		fmt.Sprintf("storage hashed with %s has no `# Security` section in its docs", hasher.Last())).
		WithHelp(fmt.Sprintf("document why keys hashed with %s cannot be chosen by an attacker", hasher.Last())).
		WithNote(hasherRef.Span, "insecure hasher used here").
		WithFixSuggestion(fix.InsertAbove(fs, "add a `# Security` section", primary, securitySection,
			fix.WithApplicability(diag.FixApplicabilityHasPlaceholders))).
		Emit()
	return nil
}

func (p *Pass) reportBackticks(cx *lint.Context, res docs.Result) {
	for _, sp := range res.Unbalanced {
		cx.Lint(UnbalancedBackticks, sp, "backticks are unbalanced").
			WithHelp("a backtick may be missing a pair").
			Emit()
	}
}

// insecureHasher finds the first insecure hasher among the container's type
// arguments, looking through nested arguments such as NMap key tuples.
func insecureHasher(cx *lint.Context, args []hir.TypeRef) (paths.Path, hir.TypeRef, bool) {
	for _, a := range args {
		if p, ok := cx.TypeDef(a); ok && paths.InsecureHashers.Contains(p) {
			return p, a, true
		}
		if p, ref, ok := insecureHasher(cx, a.Args); ok {
			return p, ref, true
		}
	}
	return nil, hir.TypeRef{}, false
}
