package sunparse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"suncc/internal/model"
)

const sample = `use std/io

fn greet(name) {
  print(name)
}

pub fn exported(x) {
  return x
}
`

func TestParseExtractsImportAndFunctions(t *testing.T) {
	elements := Parse(sample)

	var names []string
	for _, e := range elements {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "std/io")
	assert.Contains(t, names, "greet")
	assert.Contains(t, names, "exported")
}

func TestParseMarksPubFunctionsExported(t *testing.T) {
	elements := Parse(sample)
	for _, e := range elements {
		if e.Name == "exported" {
			assert.True(t, e.Exported)
			assert.Equal(t, model.KindFunction, e.Kind)
		}
		if e.Name == "greet" {
			assert.False(t, e.Exported)
		}
	}
}

func TestParseIsDeterministic(t *testing.T) {
	assert.Equal(t, Parse(sample), Parse(sample))
}
