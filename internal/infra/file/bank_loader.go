package file

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"timed-quiz-service/internal/domain"

	"gopkg.in/yaml.v3"
)

// DefaultBankID names the bank shipped inside the binary.
const DefaultBankID = "dev-basics"

//go:embed default_banks.yaml
var defaultBanksYAML []byte

type bankFile struct {
	Banks []domain.QuestionBank `yaml:"banks"`
}

// BankLoader serves question banks parsed from a YAML document.
type BankLoader struct {
	banks map[string]domain.QuestionBank
}

// Parse decodes and validates a YAML bank document.
func Parse(data []byte) (*BankLoader, error) {
	var doc bankFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode banks: %w", err)
	}
	if len(doc.Banks) == 0 {
		return nil, fmt.Errorf("decode banks: no banks defined: %w", domain.ErrInvalidBank)
	}
	banks := make(map[string]domain.QuestionBank, len(doc.Banks))
	for _, bank := range doc.Banks {
		if bank.ID == "" {
			return nil, fmt.Errorf("decode banks: bank without id: %w", domain.ErrInvalidBank)
		}
		if _, dup := banks[bank.ID]; dup {
			return nil, fmt.Errorf("decode banks: duplicate bank %q: %w", bank.ID, domain.ErrInvalidBank)
		}
		if err := bank.Validate(); err != nil {
			return nil, err
		}
		banks[bank.ID] = bank
	}
	return &BankLoader{banks: banks}, nil
}

// Load reads a YAML bank file from path.
func Load(path string) (*BankLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the loader for the embedded banks.
func Default() *BankLoader {
	loader, err := Parse(defaultBanksYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded banks are invalid: %v", err))
	}
	return loader
}

func (l *BankLoader) LoadBank(_ context.Context, quizID string) (domain.QuestionBank, error) {
	if bank, ok := l.banks[quizID]; ok {
		return bank, nil
	}
	return domain.QuestionBank{}, domain.ErrQuizNotFound
}

// Banks lists every bank ordered by ID.
func (l *BankLoader) Banks() []domain.QuestionBank {
	out := make([]domain.QuestionBank, 0, len(l.banks))
	for _, bank := range l.banks {
		out = append(out, bank)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
