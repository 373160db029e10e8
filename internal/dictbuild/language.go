package dictbuild

import (
	"strings"
	"unicode"
)

// Languages maps the supported target language codes to display names.
var Languages = map[string]string{
	"ko": "Korean",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"ja": "Japanese",
	"hr": "Croatian",
	"zh": "Chinese",
	"ru": "Russian",
}

var scripts = map[string][]*unicode.RangeTable{
	"ko": {unicode.Hangul},
	"ja": {unicode.Han, unicode.Hiragana, unicode.Katakana},
	"zh": {unicode.Han},
	"ru": {unicode.Cyrillic},
}

var posAliases = map[string]string{
	"noun":        "noun",
	"n":           "noun",
	"proper noun": "noun",
	"verb":        "verb",
	"v":           "verb",
	"adjective":   "adjective",
	"adj":         "adjective",
	"adverb":      "adverb",
	"adv":         "adverb",
}

// NormalizePOS maps a model-reported part of speech onto noun, verb,
// adjective, adverb or other.
func NormalizePOS(raw string) string {
	if pos, ok := posAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return pos
	}
	return "other"
}

var stopwords = setOf("the and but for nor yet or in on at to of by with as per via its it's his her their our your any all some")

// rarePrefixes get the strict candidate prompt, which allows the model to
// answer that no common words exist.
var rarePrefixes = setOf(`kb kc kf kg kq kx kz lc ld lf lg lk ln lp lq lr ls lt lv lw lx lz
mb mc md mf mg mh mj mk ml mm mn mp mq mr ms mt mv mw mx mz
nb nc nd nf ng nh nj nk nl nm nn np nq nr ns nt nv nw nx nz
pb pc pd pf pg pj pk pm pn pp pq pv pw px pz
qb qc qd qe qf qg qh qi qj qk ql qm qn qo qp qq qr qs qt qv qw qx qy qz
rb rc rd rf rg rj rk rl rm rn rp rq rr rs rt rv rw rx rz
sb sd sf sg sj sk sl sm sn sp sq sr ss sv sw sx sz
tb tc td tf tg tj tk tl tm tn tp tq ts tt tv tx tz
ub uc ud uf ug uh uj uk ul um uq uv uw ux uy uz
vb vc vd vf vg vh vj vk vl vm vn vp vq vr vs vt vu vv vw vx vy vz
wb wc wd wf wg wj wk wl wm wn wp wq wr ws wt wu wv ww wx wy wz
xb xc xd xe xf xg xh xi xj xk xl xm xn xo xp xq xr xs xt xu xv xw xx xy xz
yb yc yd yf yg yh yj yk yl ym yn yp yq yr ys yt yu yv yw yx yy yz
zb zc zd ze zf zg zh zi zj zk zl zm zn zo zp zq zr zs zt zu zv zw zx zy zz`)

func setOf(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

// Prefixes returns the two-letter prefixes in crawl order: common letter
// pairs first, then every remaining pair alphabetically.
func Prefixes(mode string) ([]string, error) {
	if mode != ModeTwoLetter {
		return nil, ErrUnknownMode
	}
	const (
		commonFirst  = "stpbcmdrhlfgwyvnkjqxz"
		commonSecond = "aeiouhrlnstmdcpgbykvwfjqxz"
		alphabet     = "abcdefghijklmnopqrstuvwxyz"
	)
	seen := make(map[string]bool, len(alphabet)*len(alphabet))
	prefixes := make([]string, 0, len(alphabet)*len(alphabet))
	for _, a := range commonFirst {
		for _, b := range commonSecond {
			p := string(a) + string(b)
			seen[p] = true
			prefixes = append(prefixes, p)
		}
	}
	for _, a := range alphabet {
		for _, b := range alphabet {
			if p := string(a) + string(b); !seen[p] {
				prefixes = append(prefixes, p)
			}
		}
	}
	return prefixes, nil
}
