package main

import (
	"context"
	"fmt"

	"appimage-installer/internal/icons"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages sent by the prompter from an operation goroutine. The operation
// blocks until the model answers on reply.
type confirmRequestMsg struct {
	title   string
	message string
	reply   chan<- bool
}

type iconRequestMsg struct {
	name    string
	session *icons.Session
	reply   chan<- string
}

type warnMsg string

type resolverStateMsg icons.State

// tuiPrompter answers installer questions through the running program
type tuiPrompter struct {
	send func(tea.Msg)
}

func (p *tuiPrompter) ConfirmOverwrite(name string) bool {
	return p.confirm("Overwrite", fmt.Sprintf("%s is already installed. Overwrite it?", name))
}

func (p *tuiPrompter) ConfirmRemove(name string) bool {
	return p.confirm("Remove", fmt.Sprintf("Remove %s with its icon and desktop entries?", name))
}

func (p *tuiPrompter) confirm(title, message string) bool {
	reply := make(chan bool, 1)
	p.send(confirmRequestMsg{title: title, message: message, reply: reply})
	return <-reply
}

func (p *tuiPrompter) ChooseIcon(ctx context.Context, name string, session *icons.Session) (string, error) {
	reply := make(chan string, 1)
	p.send(iconRequestMsg{name: name, session: session, reply: reply})
	select {
	case path := <-reply:
		return path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *tuiPrompter) Warn(msg string) {
	p.send(warnMsg(msg))
}
