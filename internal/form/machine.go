package form

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"lesson-ledger/internal/session"
)

const (
	eventStart  = "start"
	eventAnswer = "answer"
	eventCancel = "cancel"
)

var inProgress = []string{
	string(session.AwaitingChatID),
	string(session.AwaitingStudentName),
	string(session.AwaitingEmployeeName),
	string(session.AwaitingNextLesson),
	string(session.AwaitingHours),
	string(session.AwaitingRate),
}

// transitions is the whole form state machine. "answer" is only fired with
// input that already passed the step's validation; the last answer commits
// the record and returns the chat to idle.
var transitions = fsm.Events{
	{Name: eventStart, Src: append([]string{string(session.Idle)}, inProgress...), Dst: string(session.AwaitingChatID)},
	{Name: eventAnswer, Src: []string{string(session.AwaitingChatID)}, Dst: string(session.AwaitingStudentName)},
	{Name: eventAnswer, Src: []string{string(session.AwaitingStudentName)}, Dst: string(session.AwaitingEmployeeName)},
	{Name: eventAnswer, Src: []string{string(session.AwaitingEmployeeName)}, Dst: string(session.AwaitingNextLesson)},
	{Name: eventAnswer, Src: []string{string(session.AwaitingNextLesson)}, Dst: string(session.AwaitingHours)},
	{Name: eventAnswer, Src: []string{string(session.AwaitingHours)}, Dst: string(session.AwaitingRate)},
	{Name: eventAnswer, Src: []string{string(session.AwaitingRate)}, Dst: string(session.Idle)},
	{Name: eventCancel, Src: inProgress, Dst: string(session.Idle)},
}

// transition returns the state reached from `from` by firing event. The
// machine is rebuilt per call; the current state lives in the session manager.
func transition(ctx context.Context, from session.State, event string) (session.State, error) {
	m := fsm.NewFSM(string(from), transitions, nil)
	if err := m.Event(ctx, event); err != nil {
		var same fsm.NoTransitionError
		if errors.As(err, &same) {
			return from, nil
		}
		return from, err
	}
	return session.State(m.Current()), nil
}
