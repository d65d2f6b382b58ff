package command

import (
	"regexp"
	"strings"

	"github.com/codechat-dev/codechat/config"
)

// Label is the risk class assigned to a command candidate.
type Label string

const (
	// LabelBlocked marks irreversible or catastrophic commands. The
	// execution controller refuses them regardless of confirmation.
	LabelBlocked Label = "blocked"
	// LabelDangerous marks risky-but-sometimes-legitimate commands that
	// need explicit confirmation with rationale shown.
	LabelDangerous Label = "dangerous"
	// LabelCaution marks common state-changing commands; confirmation
	// defaults to no.
	LabelCaution Label = "caution"
	// LabelSafe marks read-only commands eligible for light confirmation
	// or auto-approval.
	LabelSafe Label = "safe"
)

type rule struct {
	label     Label
	re        *regexp.Regexp
	rationale string
}

// Classifier assigns risk labels from a fixed rule table. Classification
// is a pure function of the command text: total (every command gets
// exactly one label) and deterministic (rules are checked in a fixed
// order, highest risk first).
type Classifier struct {
	rules []rule
}

// NewClassifier builds a classifier from the built-in rule set plus any
// extra per-label patterns from config. Invalid extra patterns are
// skipped; the built-in set always applies.
func NewClassifier(extra config.SafetyRules) *Classifier {
	c := &Classifier{rules: defaultRules()}
	c.addExtra(LabelBlocked, extra.Blocked)
	c.addExtra(LabelDangerous, extra.Dangerous)
	c.addExtra(LabelCaution, extra.Caution)
	c.addExtra(LabelSafe, extra.Safe)
	return c
}

func (c *Classifier) addExtra(label Label, patterns []string) {
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		c.rules = append(c.rules, rule{label: label, re: re, rationale: "matched configured " + string(label) + " pattern"})
	}
}

// Classify returns the risk label and rationale for a command. Labels are
// evaluated in severity order; a command that matches nothing classifies
// as caution, since an unknown command must be assumed to change state.
func (c *Classifier) Classify(cmd string) (Label, string) {
	normalized := strings.Join(strings.Fields(cmd), " ")
	for _, severity := range []Label{LabelBlocked, LabelDangerous, LabelCaution, LabelSafe} {
		for _, r := range c.rules {
			if r.label == severity && r.re.MatchString(normalized) {
				return r.label, r.rationale
			}
		}
	}
	return LabelCaution, "unrecognized command, assumed to change state"
}

// ClassifyCandidates extracts commands from a response turn and classifies
// each one, preserving extraction order.
func (c *Classifier) ClassifyCandidates(turnID, text string) []Candidate {
	raw := Extract(text)
	out := make([]Candidate, 0, len(raw))
	for _, cmd := range raw {
		label, rationale := c.Classify(cmd)
		out = append(out, Candidate{Raw: cmd, SourceTurnID: turnID, Label: label, Rationale: rationale})
	}
	return out
}

// defaultRules is the built-in rule table. Each entry names a specific
// class of operation; the table is data, so the whole policy is auditable
// in one place.
func defaultRules() []rule {
	mk := func(label Label, pattern, rationale string) rule {
		return rule{label: label, re: regexp.MustCompile(pattern), rationale: rationale}
	}
	return []rule{
		// Blocked: irreversible or catastrophic.
		mk(LabelBlocked, `\brm\s+(-[a-zA-Z]*r[a-zA-Z]*f|-[a-zA-Z]*f[a-zA-Z]*r)[a-zA-Z]*\s+(--no-preserve-root\s+)?(/|/\*|\*|~|~/|\.)\s*$`, "recursive force-delete of a root, home, or working tree"),
		mk(LabelBlocked, `\brm\s+-rf\s+/[a-z]*\s*$`, "recursive force-delete of a top-level system directory"),
		mk(LabelBlocked, `\bdd\s+if=`, "raw disk write primitive"),
		mk(LabelBlocked, `\b(mkfs(\.\w+)?|wipefs\s+.*-a|sgdisk\s+.*--zap-all)\b`, "filesystem format or partition wipe"),
		mk(LabelBlocked, `:\(\)\s*\{\s*:\|:\s*&\s*\}\s*;`, "fork bomb"),
		mk(LabelBlocked, `\b(curl|wget)\b[^|;]*\|\s*(sudo\s+)?(ba)?sh\b`, "pipes a remote script directly into a shell"),
		mk(LabelBlocked, `>\s*/dev/(sd|nvme|vd|hd|mmcblk)`, "writes directly to a block device"),
		mk(LabelBlocked, `\b(chmod|chown)\s+-R\s+\S+\s+/\s*$`, "recursive permission change on /"),
		mk(LabelBlocked, `\b(shutdown|reboot|poweroff|halt|init\s+[06])\b`, "system power control"),

		// Dangerous: risky but sometimes legitimate.
		mk(LabelDangerous, `\brm\s+-[a-zA-Z]*[rf]`, "force or recursive delete of a named path"),
		mk(LabelDangerous, `\b(chmod|chown)\s+-R\b`, "recursive permission change"),
		mk(LabelDangerous, `\bgit\s+(push\s+.*--force|push\s+-f\b|reset\s+--hard|filter-branch|clean\s+-[a-zA-Z]*f)`, "rewrites or discards git history"),
		mk(LabelDangerous, `\bsudo\b`, "runs with elevated privileges"),
		mk(LabelDangerous, `\b(npm|pnpm|yarn)\s+(install|add)\s+(-g|--global)\b`, "global package install"),
		mk(LabelDangerous, `\bpip3?\s+install\b`, "python package install"),
		mk(LabelDangerous, `\b(apt(-get)?|yum|dnf|brew|pacman)\s+(install|remove|upgrade)\b`, "system package management"),
		mk(LabelDangerous, `\b(kill|pkill|killall)\b`, "terminates processes"),
		mk(LabelDangerous, `\b(terraform\s+destroy|kubectl\s+delete|docker\s+(system\s+prune|rm|rmi))\b`, "destroys deployed or containerized state"),

		// Caution: common state-changing operations.
		mk(LabelCaution, `\b(rm|mv|cp|mkdir|touch|tee|truncate)\b`, "modifies the filesystem"),
		mk(LabelCaution, `\b(sed|perl)\s+-i\b`, "in-place file edit"),
		mk(LabelCaution, `(^|[^>])>([^>]|$)|>>`, "shell redirection writes a file"),
		mk(LabelCaution, `\bgit\s+(add|commit|checkout|switch|merge|pull|clone|stash|cherry-pick|revert|push)\b`, "changes repository state"),
		mk(LabelCaution, `\b(npm|pnpm|yarn)\s+(install|add|run)\b`, "project-scoped package operation"),
		mk(LabelCaution, `\b(go\s+(get|install)|cargo\s+(install|add))\b`, "project-scoped package install"),
		mk(LabelCaution, `\b(curl|wget)\b`, "network fetch"),
		mk(LabelCaution, `\b(make|go\s+build|go\s+test|cargo\s+(build|test)|npm\s+test|docker\s+build)\b`, "runs a build or test"),

		// Safe: read-only inspection.
		mk(LabelSafe, `^(ls|pwd|whoami|date|uptime|hostname|id|env|printenv)\b`, "read-only listing"),
		mk(LabelSafe, `^(cat|head|tail|less|more|wc|file|stat|du|df|tree)\b`, "read-only file inspection"),
		mk(LabelSafe, `^(grep|rg|find|diff|which|type)\b`, "read-only search"),
		mk(LabelSafe, `^(echo|printf)\b`, "prints text"),
		mk(LabelSafe, `^git\s+(status|log|diff|show|branch|remote|describe)\b`, "read-only git query"),
		mk(LabelSafe, `^(go\s+(version|env|list)|npm\s+(ls|view)|pip3?\s+(list|show)|python3?\s+--version|ps|top\s+-b)\b`, "read-only tool query"),
	}
}
