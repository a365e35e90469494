package wizard

// Playback controls drive the demo step. Pausing stops future timers without
// touching what is on screen; playing re-arms the current sub-step.

func (s *Session) Play() error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		if s.st.Playing {
			return nil
		}
		s.st.Playing = true
		s.armDemo()
		return nil
	})
}

func (s *Session) Pause() error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		s.pause()
		return nil
	})
}

func (s *Session) TogglePlay() error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		if s.st.Playing {
			s.pause()
			return nil
		}
		s.st.Playing = true
		s.armDemo()
		return nil
	})
}

// Forward moves the demo one sub-step ahead. From the popup it counts as
// agreeing. It does nothing from transform, chat or style.
func (s *Session) Forward() error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		if s.kind() != StepDemo {
			return ErrNotApplicable
		}
		switch s.st.Sub {
		case SubReveal:
			s.enterSub(SubPopup)
		case SubPopup:
			s.enterSub(SubTransform)
		}
		return nil
	})
}

// Backward moves the demo one sub-step back, undoing chat edits on the way.
// It does nothing from reveal or transform.
func (s *Session) Backward() error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		if s.kind() != StepDemo {
			return ErrNotApplicable
		}
		switch s.st.Sub {
		case SubPopup:
			s.enterSub(SubReveal)
		case SubChat:
			s.resetChat()
			s.enterSub(SubPopup)
		case SubStyle:
			s.resetChat()
			s.st.Fullscreen = false
			s.enterSub(SubChat)
		}
		return nil
	})
}

// Stop returns the visitor to the first step with playback paused. Answers
// already given are kept.
func (s *Session) Stop() error {
	return s.do(func() error {
		if err := s.open(); err != nil {
			return err
		}
		if s.st.Submitting {
			return ErrSubmitting
		}
		s.record(EventStopped)

		s.sched.cancelAll()
		s.st.Playing = false
		s.st.Sub = SubReveal
		s.resetChat()
		s.st.Fullscreen = false
		s.st.AutoCycle = true
		s.st.VoidReady = false
		s.st.Reveal = ""
		s.steps.Reset()
		s.sections.Reset()
		s.enterStep()
		return nil
	})
}

func (s *Session) pause() {
	s.st.Playing = false
	if s.kind() == StepDemo {
		s.sched.cancel(SlotPhase, SlotChat, SlotTheme)
	}
}

func (s *Session) enterSub(sub SubStep) {
	s.sched.cancel(SlotPhase, SlotChat, SlotTheme, SlotAdvance)
	s.st.Sub = sub
	s.armDemo()
}

// armDemo schedules the timers of the current sub-step while playing.
func (s *Session) armDemo() {
	if !s.st.Playing || s.kind() != StepDemo {
		return
	}
	t := s.flow.Timings
	switch s.st.Sub {
	case SubReveal:
		s.sched.schedule(SlotPhase, t.DemoReveal, func() { s.enterSub(SubPopup) })
	case SubTransform:
		s.sched.schedule(SlotPhase, t.DemoTransform, func() { s.enterSub(SubChat) })
	case SubChat:
		s.scheduleChat()
	case SubStyle:
		if s.st.Fullscreen {
			return
		}
		s.sched.schedule(SlotPhase, t.StyleHold, s.goFullscreen)
		s.scheduleThemeCycle()
	}
}

// scheduleChat arms the next beat of the chat script. Each pair shows the
// visitor's request, then the reply, then clears the bubbles and applies the
// edit. Pairs start on chat ticks; after the last one the demo settles into
// the style stage.
func (s *Session) scheduleChat() {
	t := s.flow.Timings
	gap := max(t.ChatTick-2*t.ChatReply, 0)

	switch s.chatStage {
	case chatWaiting:
		if s.chatPair >= len(s.flow.Chat) {
			s.sched.schedule(SlotChat, gap+t.ChatSettle, func() { s.enterSub(SubStyle) })
			return
		}
		wait := t.ChatTick
		if s.chatPair > 0 {
			wait = gap
		}
		s.sched.schedule(SlotChat, wait, func() {
			s.st.Chat = []ChatMessage{s.message(s.flow.Chat[s.chatPair].User, true)}
			s.chatStage = chatAsked
			s.scheduleChat()
		})
	case chatAsked:
		s.sched.schedule(SlotChat, t.ChatReply, func() {
			s.st.Chat = append(s.st.Chat, s.message(s.flow.Chat[s.chatPair].Bot, false))
			s.chatStage = chatAnswered
			s.scheduleChat()
		})
	case chatAnswered:
		s.sched.schedule(SlotChat, t.ChatReply, func() {
			s.st.Chat = nil
			s.st.Cosmetics.apply(s.flow.Chat[s.chatPair].Mutation)
			s.sched.schedule(SlotHighlight, t.Highlight, func() { s.st.Highlight = HighlightNone })
			s.chatPair++
			s.chatStage = chatWaiting
			s.scheduleChat()
		})
	}
}

// resetChat forgets chat progress and reverts the edits it applied.
func (s *Session) resetChat() {
	s.sched.cancel(SlotChat, SlotHighlight)
	s.st.Chat = nil
	s.chatPair = 0
	s.chatStage = chatWaiting
	s.st.Cosmetics.revert()
}

func (s *Session) message(text string, fromUser bool) ChatMessage {
	s.msgSeq++
	return ChatMessage{ID: s.msgSeq, Text: text, FromUser: fromUser}
}

// scheduleLiveEdit appends the next scripted message each tick and moves on
// once the script is exhausted.
func (s *Session) scheduleLiveEdit() {
	t := s.flow.Timings
	s.sched.schedule(SlotChat, t.LiveEditTick, func() {
		if n := len(s.st.Chat); n < len(s.flow.LiveEdit) {
			s.st.Chat = append(s.st.Chat, s.flow.LiveEdit[n])
			s.scheduleLiveEdit()
			return
		}
		s.sched.schedule(SlotAdvance, t.LiveEditSettle, s.advanceStep)
	})
}
