// Package generator produces random strings constrained by character classes.
package generator

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	v1 "github.com/lukaszraczylo/kubesecrets/api/v1"
	"github.com/lukaszraczylo/kubesecrets/pkg/operrors"
)

// Character classes.
const (
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Letters   = Lowercase + Uppercase
	Digits    = "0123456789"
	Symbols   = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

var (
	errEmptyAlphabet  = errors.New("no character class enabled")
	errNegativeLength = errors.New("length must not be negative")
	errEmptyCustom    = errors.New("custom alphabet is empty")
)

// Generator produces strings of a fixed length from an alphabet, guaranteeing at
// least one character from every mandatory class.
type Generator struct {
	alphabet []rune
	required [][]rune
	length   int
}

// New validates spec and builds a Generator for it.
func New(spec v1.GenerateSpec) (*Generator, error) {
	var (
		alphabet strings.Builder
		required [][]rune
	)

	add := func(class string, allow, must *bool) {
		switch {
		case isSet(must):
			alphabet.WriteString(class)
			required = append(required, []rune(class))
		case isSet(allow):
			alphabet.WriteString(class)
		}
	}

	if spec.CustomAlphabet != nil {
		if *spec.CustomAlphabet == "" && isSet(spec.MustCustomAlphabet) {
			return nil, configError(errEmptyCustom)
		}
		// A custom alphabet is enabled by being present; must_custom_alphabet makes it mandatory.
		add(*spec.CustomAlphabet, boolPtr(true), spec.MustCustomAlphabet)
	}
	add(Letters, spec.Letters, spec.MustLetters)
	add(Digits, spec.Digits, spec.MustDigits)
	add(Symbols, spec.Symbols, spec.MustSymbols)
	add(Uppercase, spec.Uppercase, spec.MustUppercase)
	add(Lowercase, spec.Lowercase, spec.MustLowercase)

	if spec.Length < 0 {
		return nil, configError(errNegativeLength)
	}

	chars := dedupe(alphabet.String())
	if len(chars) == 0 {
		return nil, configError(errEmptyAlphabet)
	}

	if len(required) > spec.Length {
		return nil, configError(fmt.Errorf("%d mandatory character classes do not fit in length %d",
			len(required), spec.Length))
	}

	return &Generator{
		alphabet: chars,
		required: required,
		length:   spec.Length,
	}, nil
}

// Generate returns a fresh random string. Each call yields an independent value.
func (g *Generator) Generate() (string, error) {
	out := make([]rune, 0, g.length)

	for _, class := range g.required {
		r, err := pick(class)
		if err != nil {
			return "", err
		}
		out = append(out, r)
	}

	for len(out) < g.length {
		r, err := pick(g.alphabet)
		if err != nil {
			return "", err
		}
		out = append(out, r)
	}

	// Mandatory characters were placed first; shuffle so their positions are random too.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}

	return string(out), nil
}

// Alphabet returns the characters the generator draws from.
func (g *Generator) Alphabet() string {
	return string(g.alphabet)
}

// Generate builds a generator for spec and returns one value as bytes.
func Generate(spec v1.GenerateSpec) ([]byte, error) {
	g, err := New(spec)
	if err != nil {
		return nil, err
	}
	s, err := g.Generate()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func pick(class []rune) (rune, error) {
	i, err := randIndex(len(class))
	if err != nil {
		return 0, err
	}
	return class[i], nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return int(v.Int64()), nil
}

func dedupe(s string) []rune {
	seen := make(map[rune]bool, len(s))
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func isSet(b *bool) bool {
	return b != nil && *b
}

func boolPtr(b bool) *bool {
	return &b
}

func configError(err error) error {
	return operrors.New(operrors.KindGeneratorConfig, "configure generator", err)
}
