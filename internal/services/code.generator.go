package services

import (
	"math/rand/v2"
	"strings"
	"time"
)

const codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CodeGenerator produces reservation code candidates. Uniqueness is checked
// by the caller.
type CodeGenerator interface {
	Generate(at time.Time) string
}

// RandomCodeGenerator yields four random uppercase letters followed by the
// reservation date as DDMMYY, e.g. QWER150825.
type RandomCodeGenerator struct{}

func (RandomCodeGenerator) Generate(at time.Time) string {
	var b strings.Builder
	b.Grow(10)
	for range 4 {
		b.WriteByte(codeLetters[rand.IntN(len(codeLetters))])
	}
	b.WriteString(at.Format("020106"))
	return b.String()
}
