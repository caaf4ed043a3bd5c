// Package voice turns an external speech recognizer into task titles.
//
// A Provider opens capture sessions. Each Session streams interim transcripts
// followed by exactly one final transcript or an error, and holds audio
// resources until Close is called. Dictation drives one session at a time.
package voice

import (
	"context"
	"errors"
	"sync"
)

// ErrNoProvider is reported when dictation is used without a recognizer.
var ErrNoProvider = errors.New("voice input is not configured")

type EventKind int

const (
	EventInterim EventKind = iota
	EventFinal
	EventError
)

type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// Session is one capture. Close must release audio and is safe to call twice.
type Session interface {
	Events() <-chan Event
	Close() error
}

type Provider interface {
	Open(ctx context.Context) (Session, error)
}

// Dictation records one utterance at a time and hands the final transcript
// to onFinal, which runs on the session goroutine and must not call Stop.
type Dictation struct {
	provider Provider
	onFinal  func(text string)

	mu         sync.Mutex
	session    Session
	cancel     context.CancelFunc
	done       chan struct{}
	transcript string
	errMsg     string
}

func NewDictation(provider Provider, onFinal func(text string)) *Dictation {
	return &Dictation{provider: provider, onFinal: onFinal}
}

// Start opens a new session, stopping any session still running.
func (d *Dictation) Start(ctx context.Context) error {
	d.Stop()

	if d.provider == nil {
		d.setError(ErrNoProvider)
		return ErrNoProvider
	}

	ctx, cancel := context.WithCancel(ctx)
	session, err := d.provider.Open(ctx)
	if err != nil {
		cancel()
		d.setError(err)
		return err
	}

	done := make(chan struct{})
	d.mu.Lock()
	d.session = session
	d.cancel = cancel
	d.done = done
	d.transcript = ""
	d.errMsg = ""
	d.mu.Unlock()

	go d.consume(ctx, session, done)
	return nil
}

// Stop ends the current session, if any, and waits until its audio is released.
func (d *Dictation) Stop() {
	d.mu.Lock()
	session, cancel, done := d.session, d.cancel, d.done
	d.mu.Unlock()
	if session == nil {
		return
	}
	cancel()
	<-done
}

func (d *Dictation) Recording() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session != nil
}

// Transcript is the latest interim or final text of the current utterance.
func (d *Dictation) Transcript() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transcript
}

// Err returns the user-facing message of the last failure, or "".
func (d *Dictation) Err() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}

func (d *Dictation) consume(ctx context.Context, session Session, done chan struct{}) {
	defer close(done)
	defer d.release(session)

	events := session.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case EventInterim:
				d.setTranscript(ev.Text)
			case EventFinal:
				d.setTranscript(ev.Text)
				if d.onFinal != nil {
					d.onFinal(ev.Text)
				}
				return
			case EventError:
				err := ev.Err
				if err == nil {
					err = errors.New("speech recognition failed")
				}
				d.setError(err)
				return
			}
		}
	}
}

func (d *Dictation) release(session Session) {
	_ = session.Close()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == session {
		d.cancel()
		d.session = nil
		d.cancel = nil
	}
}

func (d *Dictation) setTranscript(text string) {
	d.mu.Lock()
	d.transcript = text
	d.mu.Unlock()
}

func (d *Dictation) setError(err error) {
	d.mu.Lock()
	d.errMsg = err.Error()
	d.mu.Unlock()
}
