// Package dictbuild generates English-to-target dictionaries with a
// completion model. Candidate headwords are listed per two-letter prefix,
// reviewed at several temperatures, kept only on consensus and validated
// before they are written.
package dictbuild

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/valkyrie8787/llm-dictionary/internal/retry"
)

// ModeTwoLetter crawls every two-letter prefix.
const ModeTwoLetter = "2letter"

const (
	candidateTemperature = 0.1
	maxBackoff           = time.Minute
	sourceLanguage       = "en"
)

var (
	ErrNoGenerator     = errors.New("generator is required")
	ErrUnknownLanguage = errors.New("unsupported target language")
	ErrUnknownMode     = errors.New("unknown prefix mode")
	ErrInvalidOptions  = errors.New("invalid build options")
	ErrNoEntries       = errors.New("no entries accepted")
)

// Generator produces free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, temperature float64) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	return f(ctx, prompt, temperature)
}

// Options configures a build. Start from DefaultOptions.
type Options struct {
	TargetLanguage string
	Mode           string
	Model          string // recorded in metadata only
	Batch          int    // accepted words wanted per prefix
	MinLength      int
	MaxLength      int
	Overgen        float64   // candidates requested = Batch * Overgen
	Temperatures   []float64 // one review per temperature
	ScoreCut       float64
	RarityCut      int
	SaveEvery      int // prefixes between progress saves
	MaxPrefixes    int // 0 means all
	Attempts       int
	RetryBackoff   time.Duration
	OutDir         string
	ProgressPath   string // defaults to dict_progress_<lang>.json
	Resume         bool
}

// DefaultOptions returns the settings used by askctl dict build.
func DefaultOptions() Options {
	return Options{
		TargetLanguage: "ko",
		Mode:           ModeTwoLetter,
		Batch:          20,
		MinLength:      3,
		MaxLength:      20,
		Overgen:        1.8,
		Temperatures:   []float64{0.2, 0.4, 0.8},
		ScoreCut:       0.6,
		RarityCut:      4,
		SaveEvery:      10,
		Attempts:       3,
		RetryBackoff:   5 * time.Second,
		OutDir:         ".",
	}
}

func (o Options) validate() error {
	if _, ok := Languages[o.TargetLanguage]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, o.TargetLanguage)
	}
	if o.Mode != ModeTwoLetter {
		return fmt.Errorf("%w: %q", ErrUnknownMode, o.Mode)
	}
	switch {
	case o.Batch < 1:
		return fmt.Errorf("%w: batch must be at least 1", ErrInvalidOptions)
	case o.MinLength < 1 || o.MaxLength < o.MinLength:
		return fmt.Errorf("%w: length range %d-%d", ErrInvalidOptions, o.MinLength, o.MaxLength)
	case o.Overgen < 1:
		return fmt.Errorf("%w: overgen must be at least 1", ErrInvalidOptions)
	case len(o.Temperatures) == 0:
		return fmt.Errorf("%w: at least one temperature is required", ErrInvalidOptions)
	case o.ScoreCut < 0 || o.ScoreCut > 1:
		return fmt.Errorf("%w: score cut must be within 0-1", ErrInvalidOptions)
	case o.RarityCut < 1 || o.RarityCut > 5:
		return fmt.Errorf("%w: rarity cut must be within 1-5", ErrInvalidOptions)
	case o.SaveEvery < 1 || o.Attempts < 1 || o.MaxPrefixes < 0:
		return fmt.Errorf("%w: save-every and attempts must be positive", ErrInvalidOptions)
	case o.OutDir == "":
		return fmt.Errorf("%w: output directory is required", ErrInvalidOptions)
	}
	return nil
}

// Builder runs a dictionary build.
type Builder struct {
	gen  Generator
	log  *slog.Logger
	opts Options
	now  func() time.Time
}

// New validates opts and returns a Builder that asks gen for text.
func New(gen Generator, log *slog.Logger, opts Options) (*Builder, error) {
	if gen == nil {
		return nil, ErrNoGenerator
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Builder{gen: gen, log: log, opts: opts, now: time.Now}, nil
}

// ProgressPath is where the build keeps its resumable state.
func (b *Builder) ProgressPath() string {
	if b.opts.ProgressPath != "" {
		return b.opts.ProgressPath
	}
	return fmt.Sprintf("dict_progress_%s.json", b.opts.TargetLanguage)
}

// Run crawls the prefixes, then writes the accepted entries as a new
// dictionary file in OutDir and returns its path. When ctx ends the
// progress is saved and ctx's error is returned; a later run with Resume
// picks up from there.
func (b *Builder) Run(ctx context.Context) (string, error) {
	prefixes, err := Prefixes(b.opts.Mode)
	if err != nil {
		return "", err
	}
	progressPath := b.ProgressPath()

	var p Progress
	if b.opts.Resume {
		if p, err = LoadProgress(progressPath); err != nil {
			return "", err
		}
		b.log.Info("resuming dictionary build",
			"completed", len(p.Completed), "failed", len(p.Failed), "entries", len(p.Entries))
	}
	p.Model = b.opts.Model
	p.TargetLanguage = b.opts.TargetLanguage
	p.Mode = b.opts.Mode
	p.Batch = b.opts.Batch

	done := make(map[string]bool, len(p.Completed))
	for _, prefix := range p.Completed {
		done[prefix] = true
	}

	processed := 0
	for _, prefix := range prefixes {
		if done[prefix] {
			continue
		}
		if b.opts.MaxPrefixes > 0 && processed >= b.opts.MaxPrefixes {
			break
		}
		processed++

		entries, err := b.runPrefix(ctx, prefix, &p.Metrics)
		p.Entries = append(p.Entries, entries...)
		if ctx.Err() != nil {
			if saveErr := b.save(progressPath, &p); saveErr != nil {
				b.log.Error("failed to save progress", "path", progressPath, "error", saveErr)
			}
			return "", ctx.Err()
		}
		p.Metrics.Prefixes++
		if err != nil {
			b.log.Warn("prefix failed", "prefix", prefix, "error", err)
			p.Failed = appendUnique(p.Failed, prefix)
		} else {
			p.Completed = append(p.Completed, prefix)
			p.Failed = remove(p.Failed, prefix)
			b.log.Info("prefix done", "prefix", prefix, "accepted", len(entries))
		}

		if processed%b.opts.SaveEvery == 0 {
			if err := b.save(progressPath, &p); err != nil {
				return "", err
			}
		}
	}

	if err := b.save(progressPath, &p); err != nil {
		return "", err
	}
	out, err := b.finalize(p)
	if err != nil {
		return "", err
	}
	archived := filepath.Join(filepath.Dir(progressPath),
		fmt.Sprintf("completed_%s_%s", b.now().UTC().Format("20060102_150405"), filepath.Base(progressPath)))
	if err := os.Rename(progressPath, archived); err != nil {
		b.log.Warn("failed to archive progress", "path", progressPath, "error", err)
	}
	b.log.Info("dictionary build finished", "path", out, "metrics", p.Metrics)
	return out, nil
}

func (b *Builder) save(path string, p *Progress) error {
	p.SavedAt = b.now().UTC()
	return SaveProgress(path, *p)
}

// runPrefix returns the entries accepted for prefix. Entries accepted
// before ctx ends are returned along with ctx's error.
func (b *Builder) runPrefix(ctx context.Context, prefix string, m *Metrics) ([]Entry, error) {
	words, err := b.candidates(ctx, prefix)
	if err != nil {
		return nil, err
	}
	m.Candidates += len(words)

	var accepted []Entry
	for _, word := range words {
		if len(accepted) >= b.opts.Batch {
			break
		}
		if err := ctx.Err(); err != nil {
			return accepted, err
		}
		m.Reviewed++
		entry, ok := b.consensus(ctx, prefix, word)
		if !ok || entry.Score < b.opts.ScoreCut || entry.Rarity >= b.opts.RarityCut {
			m.Rejected++
			continue
		}
		if err := ValidateEntry(entry); err != nil {
			m.Invalid++
			b.log.Warn("dropping invalid entry", "word", word, "error", err)
			continue
		}
		m.Accepted++
		accepted = append(accepted, entry)
	}
	return accepted, nil
}

var listMarker = regexp.MustCompile(`^[\s\-\*\d\.\)\(]+`)

// candidates asks for headwords starting with prefix and returns the ones
// that pass the length, prefix and stopword filters.
func (b *Builder) candidates(ctx context.Context, prefix string) ([]string, error) {
	want := int(math.Round(float64(b.opts.Batch) * b.opts.Overgen))
	prompt := candidatePrompt(prefix, want, b.opts.MinLength, rarePrefixes[prefix])
	resp, err := b.ask(ctx, prompt, candidateTemperature)
	if err != nil {
		return nil, err
	}
	if strings.Contains(strings.ToLower(resp), noCommonWords) {
		return nil, nil
	}

	seen := make(map[string]bool)
	var words []string
	for _, line := range strings.Split(resp, "\n") {
		w := listMarker.ReplaceAllString(strings.ToLower(strings.TrimSpace(line)), "")
		w = strings.Trim(w, " '-")
		n := utf8.RuneCountInString(w)
		if n < b.opts.MinLength || n > b.opts.MaxLength {
			continue
		}
		if !strings.HasPrefix(w, prefix) || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
		if len(words) >= want {
			break
		}
	}
	return words, nil
}

type review struct {
	Accept           bool     `json:"accept"`
	ProperNoun       bool     `json:"proper_noun"`
	Rarity           float64  `json:"rarity"`
	Confidence       float64  `json:"confidence"`
	POS              string   `json:"pos"`
	DefinitionEN     string   `json:"definition_en"`
	ExampleEN        string   `json:"example_en"`
	WordTarget       string   `json:"word_target"`
	DefinitionTarget string   `json:"definition_target"`
	ExampleTarget    string   `json:"example_target"`
	Reasons          []string `json:"reasons"`
}

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// review asks the model to judge and translate word once. Failed requests
// and unparseable replies count as rejections.
func (b *Builder) review(ctx context.Context, word string, temperature float64) review {
	rejected := func(reason string) review {
		return review{Rarity: 5, Reasons: []string{reason}}
	}
	resp, err := b.ask(ctx, reviewPrompt(word, Languages[b.opts.TargetLanguage]), temperature)
	if err != nil {
		return rejected("request_failed")
	}
	raw := jsonObject.FindString(resp)
	if raw == "" {
		return rejected("invalid_json")
	}
	r := review{Rarity: 5}
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return rejected("invalid_json")
	}
	if r.ProperNoun {
		r.Accept = false
		r.Reasons = append(r.Reasons, "proper_noun")
	}
	if r.Rarity >= float64(b.opts.RarityCut) {
		r.Accept = false
		r.Reasons = append(r.Reasons, "too_rare")
	}
	return r
}

// consensus reviews word once per temperature and builds an entry from the
// most confident acceptance when enough reviews agree.
func (b *Builder) consensus(ctx context.Context, prefix, word string) (Entry, bool) {
	total := len(b.opts.Temperatures)
	need := max(2, (total+1)/2)
	if need > total {
		need = total
	}

	var accepted []review
	for _, t := range b.opts.Temperatures {
		if r := b.review(ctx, word, t); r.Accept {
			accepted = append(accepted, r)
		}
	}
	if len(accepted) < need {
		return Entry{}, false
	}

	best := accepted[0]
	var confSum, raritySum float64
	for _, r := range accepted {
		if r.Confidence > best.Confidence {
			best = r
		}
		confSum += r.Confidence
		raritySum += r.Rarity
	}
	n := float64(len(accepted))
	conf := confSum / n

	return Entry{
		Word:             word,
		Prefix:           prefix,
		Length:           utf8.RuneCountInString(word),
		POS:              NormalizePOS(best.POS),
		DefinitionEN:     strings.TrimSpace(best.DefinitionEN),
		ExampleEN:        strings.TrimSpace(best.ExampleEN),
		WordTarget:       strings.TrimSpace(best.WordTarget),
		DefinitionTarget: strings.TrimSpace(best.DefinitionTarget),
		ExampleTarget:    strings.TrimSpace(best.ExampleTarget),
		TargetLang:       b.opts.TargetLanguage,
		Rarity:           int(math.RoundToEven(raritySum / n)),
		Confidence:       round3(conf),
		Score:            round3(conf * n / float64(total)),
		CollectedAt:      b.now().UTC().Format(time.RFC3339),
	}, true
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// ask calls the generator, retrying failed requests with backoff.
func (b *Builder) ask(ctx context.Context, prompt string, temperature float64) (string, error) {
	var err error
	for attempt := 0; attempt < b.opts.Attempts; attempt++ {
		if attempt > 0 {
			delay := retry.ExponentialBackoff(attempt-1, b.opts.RetryBackoff, maxBackoff)
			if waitErr := sleep(ctx, delay); waitErr != nil {
				return "", waitErr
			}
		}
		var resp string
		if resp, err = b.gen.Generate(ctx, prompt, temperature); err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		b.log.Warn("generation failed", "attempt", attempt+1, "error", err)
	}
	return "", fmt.Errorf("generate after %d attempts: %w", b.opts.Attempts, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// finalize keeps the best-scoring entry per word, validates the rest and
// writes them to a new dictionary file.
func (b *Builder) finalize(p Progress) (string, error) {
	best := make(map[string]Entry, len(p.Entries))
	for _, e := range p.Entries {
		if cur, ok := best[e.Word]; !ok || e.Score > cur.Score {
			best[e.Word] = e
		}
	}
	entries := make([]Entry, 0, len(best))
	for _, e := range best {
		if err := ValidateEntry(e); err != nil {
			b.log.Warn("dropping invalid entry", "word", e.Word, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return "", ErrNoEntries
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Word < entries[j].Word })

	now := b.now().UTC()
	file := File{
		Metadata: Metadata{
			Title:          fmt.Sprintf("English-%s Dictionary (%s)", Languages[b.opts.TargetLanguage], b.opts.Mode),
			SourceLanguage: sourceLanguage,
			TargetLanguage: b.opts.TargetLanguage,
			ModelUsed:      b.opts.Model,
			CreatedAt:      now,
			TotalEntries:   len(entries),
		},
		Entries: entries,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode dictionary: %w", err)
	}

	if err := os.MkdirAll(b.opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("dict_%s_%s_%s.json", b.opts.TargetLanguage, b.opts.Mode, now.Format("20060102_150405"))
	path := filepath.Join(b.opts.OutDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write dictionary: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("write dictionary: %w", err)
	}
	return path, nil
}
