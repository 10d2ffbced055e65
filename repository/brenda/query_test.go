package brenda

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestCleanName(t *testing.T) {
	cases := []struct {
		input   string
		expect  string
		cleaned bool
	}{
		{"Escherichia coli", "Escherichia coli", false},
		{"no activity in Eptesicus fuscus", "Eptesicus fuscus", true},
		{"no activity by Mycobacterium smegmatis MSMEI_6484", "Mycobacterium smegmatis MSMEI_6484", true},
	}

	for _, c := range cases {
		name, cleaned := CleanName(c.input)
		assert.Equal(t, c.expect, name, c.input)
		assert.Equal(t, c.cleaned, cleaned, c.input)
	}
}
