package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rcmulti/domain"
)

// Translator traduz a classe interna para o código proprietário de cada
// seguradora. Tabela carregada uma vez na subida, imutável depois.
type Translator struct {
	table map[domain.CarrierID]map[domain.RiskClass]string
}

// NewTranslator cria o tradutor sobre uma tabela pronta. Entradas ausentes
// significam "não suportado" — nunca um default silencioso.
func NewTranslator(table map[domain.CarrierID]map[domain.RiskClass]string) *Translator {
	return &Translator{table: table}
}

// DefaultTranslator devolve a tabela corrente das seguradoras integradas.
// Cirurgião plástico não tem código na Akad.
func DefaultTranslator() *Translator {
	return NewTranslator(map[domain.CarrierID]map[domain.RiskClass]string{
		domain.CarrierFairfax: {
			domain.ClassSemCirurgia:       "NO-SURGERY",
			domain.ClassComCirurgia:       "SURGERY-EXCEPT-PLASTIC",
			domain.ClassObstetra:          "OBSTETRICIAN",
			domain.ClassCirurgiaoPlastico: "PLASTIC-SURGEON",
		},
		domain.CarrierAkad: {
			domain.ClassSemCirurgia: "1",
			domain.ClassComCirurgia: "2",
			domain.ClassObstetra:    "3",
		},
	})
}

// LoadTranslator lê a tabela de mapeamento do YAML de configuração.
// Valor null marca a classe como não suportada pela seguradora.
func LoadTranslator(path string) (*Translator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("carrier classes: %w", err)
	}

	var raw map[string]map[string]*string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("carrier classes: %w", err)
	}

	table := make(map[domain.CarrierID]map[domain.RiskClass]string, len(raw))
	for carrier, classes := range raw {
		entry := make(map[domain.RiskClass]string, len(classes))
		for class, code := range classes {
			if code == nil || *code == "" {
				continue
			}
			entry[domain.RiskClass(class)] = *code
		}
		table[domain.CarrierID(carrier)] = entry
	}
	return NewTranslator(table), nil
}

// Translate é uma função pura sobre a tabela estática: sem I/O, sem efeito.
// Devolve UnsupportedClassError quando não há código — o pipeline daquela
// seguradora deve parar antes de qualquer chamada de rede.
func (t *Translator) Translate(carrier domain.CarrierID, class domain.RiskClass) (string, error) {
	if code, ok := t.table[carrier][class]; ok {
		return code, nil
	}
	return "", &domain.UnsupportedClassError{Carrier: carrier, Class: class}
}
