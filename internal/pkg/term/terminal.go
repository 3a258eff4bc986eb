// Package term — интерактивный ввод в терминале: строки и секреты без эха.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"golang.org/x/xerrors"
)

// Terminal читает ответы пользователя. Если вход не является терминалом
// (конвейер, тесты), секреты читаются как обычные строки.
type Terminal struct {
	in      *bufio.Reader
	out     io.Writer
	stdinfd int
	tty     bool
}

// NewTerminal создает Terminal поверх stdin/stdout процесса.
func NewTerminal() *Terminal {
	fd := int(os.Stdin.Fd())
	return &Terminal{
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		stdinfd: fd,
		tty:     term.IsTerminal(fd),
	}
}

// NewTerminalFrom создает Terminal поверх произвольных потоков.
func NewTerminalFrom(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// IsTerminal сообщает, подключен ли вход к терминалу.
func (t *Terminal) IsTerminal() bool {
	return t.tty
}

// ReadLine выводит приглашение и читает одну строку.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", xerrors.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret выводит приглашение и читает значение без эха.
func (t *Terminal) ReadSecret(prompt string) (string, error) {
	if !t.tty {
		secret, err := t.ReadLine(prompt)
		if err != nil {
			return "", err
		}
		if secret == "" {
			return "", xerrors.New("empty secret")
		}
		return secret, nil
	}

	fmt.Fprint(t.out, prompt)
	raw, err := term.ReadPassword(t.stdinfd)
	fmt.Fprintln(t.out) // Новая строка после ввода
	if err != nil {
		return "", xerrors.Errorf("failed to read secret: %w", err)
	}
	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return "", xerrors.New("empty secret")
	}
	return secret, nil
}

// Width возвращает ширину терминала или fallback, если ее не узнать.
func (t *Terminal) Width(fallback int) int {
	if !t.tty {
		return fallback
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
