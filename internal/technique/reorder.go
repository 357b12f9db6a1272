package technique

import (
	"math/rand"

	"github.com/ticofookfook/argfuscator/internal/cmdline"
)

func optionReordering() Technique {
	return Technique{
		ID:          "OptionReordering",
		Name:        "Option Reordering",
		Description: "Permutes options (with their values) of programs that do not care about option order. Positionals stay in place.",
		Scope:       ScopeCommand,
		Platforms:   []cmdline.Platform{cmdline.PlatformPosix},
		Applicable: func(env *Env, cmd *cmdline.Command) bool {
			if !env.profile().OrderInsensitive {
				return false
			}
			units := cmd.Units()
			if len(units) < 2 {
				return false
			}
			first := unitText(cmd, units[0])
			for _, u := range units[1:] {
				if unitText(cmd, u) != first {
					return true
				}
			}
			return false
		},
		Restructure: func(_ *Env, cmd *cmdline.Command, rng *rand.Rand) {
			units := cmd.Units()
			if len(units) < 2 {
				return
			}
			perm := rng.Perm(len(units))
			identity := true
			for i, p := range perm {
				if i != p {
					identity = false
					break
				}
			}
			if identity {
				perm[0], perm[1] = perm[1], perm[0]
			}

			out := make([]cmdline.Token, 0, len(cmd.Tokens))
			k := 0
			for i := 0; i < len(cmd.Tokens); {
				if k < len(units) && units[k].Option == i {
					u := units[perm[k]]
					out = append(out, cmd.Tokens[u.Option])
					if u.Value >= 0 {
						out = append(out, cmd.Tokens[u.Value])
					}
					i += units[k].Len()
					k++
					continue
				}
				out = append(out, cmd.Tokens[i])
				i++
			}
			cmd.Tokens = out
		},
	}
}

func unitText(cmd *cmdline.Command, u cmdline.Unit) string {
	s := cmd.Tokens[u.Option].Text()
	if u.Value >= 0 {
		v := cmd.Tokens[u.Value]
		s += v.Separator + "\x00" + v.Text()
	}
	return s
}
