package csv

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonebook/pkg/contract"
)

var header = contract.Row{"lastname", "firstname", "surname", "organization", "position", "phone", "email"}

func assemble(t *testing.T, a *Assembler, h contract.Row, cs []contract.Contact, le contract.LineEnding) string {
	t.Helper()
	r, err := a.Assemble(context.Background(), h, cs, le)
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestAssembleHeaderFirst(t *testing.T) {
	a, err := New(nil)
	require.NoError(t, err)
	cs := []contract.Contact{
		{"Абрамов", "Олег", "", "ФНС", "", "+7(495)913-04-78", ""},
		{"Смирнов", "Иван", "", "", "", "+7(999)123-45-67", "ivan@example.ru"},
	}
	got := assemble(t, a, header, cs, contract.LineEndingLF)
	want := "lastname,firstname,surname,organization,position,phone,email\n" +
		"Абрамов,Олег,,ФНС,,+7(495)913-04-78,\n" +
		"Смирнов,Иван,,,,+7(999)123-45-67,ivan@example.ru\n"
	assert.Equal(t, want, got)
}

func TestAssembleHeaderPadTruncate(t *testing.T) {
	a, _ := New(nil)
	assert.Equal(t, "a,b,,,,,\n", assemble(t, a, contract.Row{"a", "b"}, nil, contract.LineEndingLF))
	assert.Equal(t, "1,2,3,4,5,6,7\n", assemble(t, a, contract.Row{"1", "2", "3", "4", "5", "6", "7", "8", "9"}, nil, contract.LineEndingLF))
}

func TestAssembleLineEnding(t *testing.T) {
	h := contract.Row{"a", "b", "c", "d", "e", "f", "g"}
	tests := []struct {
		name string
		opt  string
		in   contract.LineEnding
		want string
	}{
		{"auto follows lf", "", contract.LineEndingLF, "a,b,c,d,e,f,g\n"},
		{"auto follows crlf", "auto", contract.LineEndingCRLF, "a,b,c,d,e,f,g\r\n"},
		{"auto unknown input", "auto", "", "a,b,c,d,e,f,g\n"},
		{"forced lf", "lf", contract.LineEndingCRLF, "a,b,c,d,e,f,g\n"},
		{"forced crlf", "CRLF", contract.LineEndingLF, "a,b,c,d,e,f,g\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(&Options{LineEnding: tt.opt})
			require.NoError(t, err)
			assert.Equal(t, tt.want, assemble(t, a, h, nil, tt.in))
		})
	}
}

func TestAssembleQuoting(t *testing.T) {
	a, _ := New(nil)
	cs := []contract.Contact{{"Иванов, мл.", `a "b"`, "", "", " советник", "", ""}}
	got := assemble(t, a, header, cs, contract.LineEndingLF)
	assert.Contains(t, got, "\"Иванов, мл.\",\"a \"\"b\"\"\",,,\" советник\",,\n")
}

func TestAssembleCustomComma(t *testing.T) {
	a, err := New(&Options{Comma: ";"})
	require.NoError(t, err)
	got := assemble(t, a, contract.Row{"a", "b,c"}, nil, contract.LineEndingLF)
	assert.Equal(t, "a;b,c;;;;;\n", got)
}

func TestNewRejectsBadOptions(t *testing.T) {
	for _, o := range []Options{{Comma: "ab"}, {Comma: "\""}, {Comma: "\n"}, {LineEnding: "cr"}} {
		_, err := New(&o)
		assert.Error(t, err, "%+v", o)
	}
}

func TestAssembleCancelled(t *testing.T) {
	a, _ := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Assemble(ctx, header, nil, contract.LineEndingLF)
	assert.ErrorIs(t, err, context.Canceled)
}
