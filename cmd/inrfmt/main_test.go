package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Args(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"1234567", "1000", "2500.75"}, strings.NewReader(""), &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Equal(t, "12,34,567\n1,000\n2,500.75\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRun_Stdin(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(nil, strings.NewReader("₹ 9,99,999\n12a34\n100\n"), &out, &errOut)

	assert.Equal(t, 1, code)
	assert.Equal(t, "9,99,999\n100\n", out.String())
	assert.Contains(t, errOut.String(), `"12a34": Enter a valid amount`)
}

func TestRun_EmptyLine(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(nil, strings.NewReader("\n"), &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Equal(t, "\n", out.String())
}
