package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/abhisek/gameiq/internal/store"
)

// FileSuffix marks catalog files: "<sport>__<position>_core.json".
const FileSuffix = "_core.json"

// File is the on-disk catalog format.
type File struct {
	Sport      string                  `json:"sport"`
	Position   string                  `json:"position"`
	Categories map[string]CategoryData `json:"categories"`
}

// CategoryData is one category of a catalog file.
type CategoryData struct {
	Description string         `json:"description"`
	Questions   []QuestionData `json:"questions"`
}

// QuestionData is one question of a catalog file. Generated questions use
// the same shape plus a category hint.
type QuestionData struct {
	ID           string         `json:"id"`
	CategoryHint string         `json:"categoryHint,omitempty"`
	Scenario     string         `json:"scenario"`
	Question     string         `json:"question"`
	Options      []store.Option `json:"options"`
	Correct      string         `json:"correct"`
	Explanation  string         `json:"explanation"`
	Difficulty   string         `json:"difficulty"`
	Tags         []string       `json:"tags"`
}

// Difficulties accepted in catalog and generated questions.
var Difficulties = []string{"beginner", "intermediate", "advanced"}

// Validate checks the fixed question shape: four options A-D, a correct
// option among them, non-empty text and a known difficulty.
func (q QuestionData) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return errors.New("missing id")
	}
	if strings.TrimSpace(q.Scenario) == "" || strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question %s: empty scenario or question", q.ID)
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("question %s: want 4 options, got %d", q.ID, len(q.Options))
	}
	seen := make(map[string]bool, 4)
	for _, o := range q.Options {
		if o.ID == "" || strings.TrimSpace(o.Text) == "" {
			return fmt.Errorf("question %s: option with empty id or text", q.ID)
		}
		if seen[o.ID] {
			return fmt.Errorf("question %s: duplicate option %s", q.ID, o.ID)
		}
		seen[o.ID] = true
	}
	if !seen[q.Correct] {
		return fmt.Errorf("question %s: correct option %q is not among the options", q.ID, q.Correct)
	}
	if !isDifficulty(q.Difficulty) {
		return fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
	}
	return nil
}

// ToQuestion converts q into a storable question.
func (q QuestionData) ToQuestion(categoryID int64, sport, position, key string, source store.QuestionSource) *store.Question {
	return &store.Question{
		CategoryID:    categoryID,
		Sport:         sport,
		Position:      position,
		ExternalKey:   key,
		Scenario:      q.Scenario,
		Question:      q.Question,
		Options:       q.Options,
		CorrectOption: q.Correct,
		Explanation:   q.Explanation,
		Difficulty:    strings.ToLower(q.Difficulty),
		Tags:          q.Tags,
		Source:        source,
	}
}

func isDifficulty(d string) bool {
	d = strings.ToLower(d)
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Files    int
	Inserted int
	Skipped  int
	Failed   []string
}

// Importer loads catalog files into the store. Re-importing a file is a
// no-op for questions that already exist.
type Importer struct {
	store *store.Store
	log   zerolog.Logger
}

// NewImporter creates an Importer.
func NewImporter(s *store.Store, log zerolog.Logger) *Importer {
	return &Importer{store: s, log: log.With().Str("component", "catalog").Logger()}
}

// ImportDir imports every "*_core.json" file in dir. A broken file is
// logged and skipped; the others still import.
func (im *Importer) ImportDir(ctx context.Context, dir string) (ImportResult, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+FileSuffix))
	if err != nil {
		return ImportResult{}, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(matches)
	return im.ImportFiles(ctx, matches...), nil
}

// ImportFiles imports the given files, continuing past failures.
func (im *Importer) ImportFiles(ctx context.Context, paths ...string) ImportResult {
	var res ImportResult
	for _, p := range paths {
		inserted, skipped, err := im.importFile(ctx, p)
		if err != nil {
			im.log.Error().Err(err).Str("file", p).Msg("catalog import failed")
			res.Failed = append(res.Failed, p)
			continue
		}
		res.Files++
		res.Inserted += inserted
		res.Skipped += skipped
		im.log.Info().Str("file", p).Int("inserted", inserted).Int("skipped", skipped).Msg("catalog file imported")
	}
	return res
}

func (im *Importer) importFile(ctx context.Context, path string) (int, int, error) {
	sport, position, err := ParseFileName(filepath.Base(path))
	if err != nil {
		return 0, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	data, err := Decode(f)
	if err != nil {
		return 0, 0, err
	}

	if NormalizeKey(data.Sport) != sport || NormalizeKey(data.Position) != position {
		im.log.Warn().
			Str("file", path).
			Str("sport", data.Sport).
			Str("position", data.Position).
			Msg("catalog file content does not match its name, using the name")
	}

	return im.Import(ctx, sport, position, data)
}

// Import writes one decoded catalog in a single transaction.
func (im *Importer) Import(ctx context.Context, sport, position string, data *File) (inserted, skipped int, err error) {
	names := make([]string, 0, len(data.Categories))
	for name := range data.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	err = im.store.InTx(ctx, func(tx *store.Repos) error {
		for _, name := range names {
			cat := data.Categories[name]
			catID, err := tx.EnsureCategory(ctx, store.Category{
				Sport:       sport,
				Position:    position,
				Name:        name,
				Description: cat.Description,
			})
			if err != nil {
				return err
			}
			for _, qd := range cat.Questions {
				if err := qd.Validate(); err != nil {
					return fmt.Errorf("category %s: %w", name, err)
				}
				ok, err := tx.InsertQuestion(ctx, qd.ToQuestion(catID, sport, position, qd.ID, store.SourceCatalog))
				if err != nil {
					return err
				}
				if ok {
					inserted++
				} else {
					skipped++
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, skipped, nil
}

// Decode parses a catalog file.
func Decode(r io.Reader) (*File, error) {
	var data File
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(data.Categories) == 0 {
		return nil, errors.New("catalog has no categories")
	}
	return &data, nil
}

// ParseFileName splits "basketball__point-guard_core.json" into
// ("basketball", "point-guard").
func ParseFileName(name string) (sport, position string, err error) {
	if !strings.HasSuffix(name, FileSuffix) {
		return "", "", fmt.Errorf("invalid catalog file name %q: expected sport__position%s", name, FileSuffix)
	}
	parts := strings.Split(strings.TrimSuffix(name, FileSuffix), "__")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid catalog file name %q: expected sport__position%s", name, FileSuffix)
	}
	return NormalizeKey(parts[0]), NormalizeKey(parts[1]), nil
}
