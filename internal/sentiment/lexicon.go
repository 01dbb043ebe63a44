package sentiment

// defaultLexicon is a compact polarity word list tuned for news copy.
// Weights follow the usual valence convention: common words near +-1,
// strong words up to +-2.
var defaultLexicon = map[string]float64{
	// positive
	"advance":      1.0,
	"agreement":    0.8,
	"approval":     1.0,
	"benefit":      1.2,
	"boom":         1.4,
	"boost":        1.2,
	"breakthrough": 1.8,
	"calm":         0.8,
	"celebrate":    1.5,
	"champion":     1.2,
	"confidence":   1.0,
	"cure":         1.5,
	"excellent":    1.8,
	"gain":         1.0,
	"good":         1.2,
	"great":        1.5,
	"growth":       1.0,
	"happy":        1.4,
	"heal":         1.0,
	"help":         0.8,
	"hope":         1.0,
	"improve":      1.2,
	"improvement":  1.2,
	"optimism":     1.2,
	"peace":        1.4,
	"popular":      0.8,
	"positive":     1.0,
	"profit":       1.0,
	"progress":     1.0,
	"promising":    1.2,
	"prosperity":   1.4,
	"rally":        0.8,
	"recover":      1.0,
	"recovery":     1.0,
	"relief":       1.0,
	"rescue":       1.0,
	"safe":         1.0,
	"stability":    0.8,
	"strong":       0.8,
	"succeed":      1.4,
	"success":      1.5,
	"successful":   1.5,
	"support":      0.6,
	"surge":        0.6,
	"thrive":       1.4,
	"triumph":      1.6,
	"upbeat":       1.2,
	"victory":      1.4,
	"welcome":      0.8,
	"win":          1.2,
	"wonderful":    1.8,

	// negative
	"accident":     -1.2,
	"attack":       -1.5,
	"bad":          -1.2,
	"bankrupt":     -1.6,
	"blast":        -1.2,
	"catastrophe":  -2.0,
	"chaos":        -1.5,
	"collapse":     -1.6,
	"concern":      -0.6,
	"conflict":     -1.2,
	"crash":        -1.5,
	"crime":        -1.2,
	"crisis":       -1.6,
	"damage":       -1.2,
	"danger":       -1.4,
	"dead":         -1.6,
	"death":        -1.6,
	"decline":      -1.0,
	"defeat":       -1.2,
	"deficit":      -1.0,
	"disaster":     -1.8,
	"disease":      -1.2,
	"downturn":     -1.2,
	"drought":      -1.2,
	"emergency":    -1.2,
	"fail":         -1.4,
	"failure":      -1.4,
	"fear":         -1.2,
	"flood":        -1.0,
	"fraud":        -1.5,
	"grim":         -1.2,
	"harm":         -1.2,
	"hate":         -1.5,
	"injury":       -1.2,
	"kill":         -1.8,
	"killed":       -1.8,
	"lawsuit":      -0.8,
	"layoff":       -1.2,
	"layoffs":      -1.2,
	"loss":         -1.0,
	"murder":       -1.8,
	"outbreak":     -1.4,
	"panic":        -1.5,
	"poor":         -1.0,
	"recession":    -1.5,
	"risk":         -0.8,
	"scandal":      -1.4,
	"shortage":     -1.0,
	"slump":        -1.2,
	"terrible":     -1.6,
	"threat":       -1.2,
	"tragedy":      -1.8,
	"unemployment": -1.2,
	"violence":     -1.5,
	"war":          -1.4,
	"warning":      -0.8,
	"worst":        -1.6,
}
