package service

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"rcmulti/domain"
)

// Classifier resolve uma especialidade (slug ou nome de exibição) para a
// classe interna de risco. A tabela é carregada uma vez e nunca muda depois,
// então o lookup é seguro para uso concorrente sem lock.
type Classifier struct {
	list   []domain.SpecialtyInfo
	byID   map[string]domain.SpecialtyInfo
	byName map[string]domain.SpecialtyInfo // chave normalizada (sem acento, minúscula)
}

// NewClassifier monta o índice a partir de uma lista já normalizada.
func NewClassifier(list []domain.SpecialtyInfo) *Classifier {
	c := &Classifier{
		list:   list,
		byID:   make(map[string]domain.SpecialtyInfo, len(list)),
		byName: make(map[string]domain.SpecialtyInfo, len(list)),
	}
	for _, s := range list {
		c.byID[strings.ToLower(s.ID)] = s
		c.byName[foldKey(s.Name)] = s
	}
	return c
}

// LoadClassifier lê o arquivo de enquadramentos. Aceita os dois formatos do
// arquivo original: array de {id, nome, enquadramento} ou objeto {nome: classe}.
func LoadClassifier(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("enquadramentos: %w", err)
	}

	var arr []struct {
		ID    string `json:"id"`
		Name  string `json:"nome"`
		Class string `json:"enquadramento"`
	}
	if err := json.Unmarshal(data, &arr); err == nil {
		list := make([]domain.SpecialtyInfo, 0, len(arr))
		for _, r := range arr {
			id := r.ID
			if id == "" {
				id = slug(r.Name)
			}
			list = append(list, domain.SpecialtyInfo{
				ID:    strings.ToLower(id),
				Name:  r.Name,
				Class: normalizeClass(r.Class),
			})
		}
		return NewClassifier(list), nil
	}

	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("enquadramentos: formato não reconhecido: %w", err)
	}
	list := make([]domain.SpecialtyInfo, 0, len(obj))
	for name, class := range obj {
		list = append(list, domain.SpecialtyInfo{
			ID:    slug(name),
			Name:  name,
			Class: normalizeClass(class),
		})
	}
	return NewClassifier(list), nil
}

// Resolve tenta bater pelo id (slug) e depois pelo nome normalizado.
// Devolve domain.ErrSpecialtyNotFound quando não há enquadramento.
func (c *Classifier) Resolve(key string) (domain.RiskClass, error) {
	info, err := c.Info(key)
	if err != nil {
		return "", err
	}
	return info.Class, nil
}

// Info devolve a especialidade completa, para quem precisa do nome de exibição.
func (c *Classifier) Info(key string) (domain.SpecialtyInfo, error) {
	target := strings.ToLower(strings.TrimSpace(key))
	if target == "" {
		return domain.SpecialtyInfo{}, domain.ErrSpecialtyNotFound
	}
	if hit, ok := c.byID[target]; ok {
		return hit, nil
	}
	if hit, ok := c.byName[foldKey(target)]; ok {
		return hit, nil
	}
	return domain.SpecialtyInfo{}, domain.ErrSpecialtyNotFound
}

// Specialties devolve a lista completa, para a tela de autocomplete.
func (c *Classifier) Specialties() []domain.SpecialtyInfo {
	return c.list
}

func normalizeClass(v string) domain.RiskClass {
	switch domain.RiskClass(strings.ToUpper(strings.TrimSpace(v))) {
	case domain.ClassComCirurgia:
		return domain.ClassComCirurgia
	case domain.ClassObstetra:
		return domain.ClassObstetra
	case domain.ClassCirurgiaoPlastico:
		return domain.ClassCirurgiaoPlastico
	default:
		return domain.ClassSemCirurgia
	}
}

var diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldKey tira acentos e caixa: "Obstetrícia" e "obstetricia" batem igual.
func foldKey(s string) string {
	folded, _, err := transform.String(diacriticFold, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(slugStrip.ReplaceAllString(foldKey(s), "-"), "-")
}
