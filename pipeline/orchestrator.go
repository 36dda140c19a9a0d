package pipeline

import (
	"context"
	"time"

	"murmur/audio"
	"murmur/encoder"
	"murmur/enhancer"
	"murmur/history"
	"murmur/log"
	"murmur/output"
	"murmur/transcriber"
	"murmur/vad"
)

// Recorder is the capture side the orchestrator drives. audio.Capture is
// the real implementation.
type Recorder interface {
	Start(device *audio.DeviceInfo) error
	Stop()
}

// Deps are the orchestrator's collaborators. History and Events may be nil.
type Deps struct {
	Ring        *audio.Ring
	Recorder    Recorder
	Gate        *vad.Gate
	Encoder     encoder.Encoder
	Transcriber transcriber.Transcriber
	Enhancer    enhancer.Enhancer
	Output      output.Writer
	History     history.Store
	Events      EventSink
}

type Options struct {
	Device        *audio.DeviceInfo
	Mode          string
	Language      string
	SampleRate    int
	MaxDuration   time.Duration // 0 disables the forced stop
	FlushInterval time.Duration // 0 flushes per fragment
}

const drainInterval = 50 * time.Millisecond

// Orchestrator owns the state machine and runs one session at a time.
// Press and Release are the two hotkey edges; everything else follows from
// them.
type Orchestrator struct {
	deps Deps
	opts Options

	machine *Machine

	baseCtx    context.Context
	baseCancel context.CancelFunc

	// all fields below are guarded by the machine's serialized entry
	// points: Press, Release, mic test, and Close all hold ctlMu.
	ctlMu     chan struct{} // 1-buffered semaphore, see lock/unlock
	current   *session
	drainStop chan struct{}
	drainRes  chan []int16
	maxTimer  *time.Timer
	micTest   bool
	overflows uint64
}

func New(deps Deps, opts Options) *Orchestrator {
	if deps.Events == nil {
		deps.Events = NopSink{}
	}
	if opts.Mode == "" {
		opts.Mode = "professional"
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = 16000
	}
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		deps:       deps,
		opts:       opts,
		machine:    NewMachine(),
		baseCtx:    ctx,
		baseCancel: cancel,
		ctlMu:      make(chan struct{}, 1),
	}
	return o
}

func (o *Orchestrator) lock()   { o.ctlMu <- struct{}{} }
func (o *Orchestrator) unlock() { <-o.ctlMu }

// Machine exposes the state machine for observers.
func (o *Orchestrator) Machine() *Machine { return o.machine }

func (o *Orchestrator) State() State { return o.machine.State() }

// Level is the smoothed input level snapshot, 0..1.
func (o *Orchestrator) Level() float64 { return o.deps.Gate.Level() }

// SetMode changes the enhancement mode for future sessions.
func (o *Orchestrator) SetMode(mode string) {
	o.lock()
	defer o.unlock()
	o.opts.Mode = mode
}

// Press handles the hotkey-down edge.
func (o *Orchestrator) Press() {
	o.lock()
	defer o.unlock()

	switch o.machine.State() {
	case Idle:
		o.startRecording(Idle)
	case Recording:
		// key auto-repeat while held
	case Processing:
		o.bargeIn()
	case Cancelling:
		// transient; the barge-in in flight owns it
	}
}

// Release handles the hotkey-up edge.
func (o *Orchestrator) Release() {
	o.lock()
	defer o.unlock()
	o.stopRecording("stop recording")
}

// bargeIn cancels the in-flight session, waits for its output writer to
// finalize, then opens a fresh recording. The wait is what guarantees the
// clipboard is restored before the new Recording state is observable.
func (o *Orchestrator) bargeIn() {
	sess := o.current
	if err := o.machine.Transition(Processing, Cancelling, "restart recording"); err != nil {
		// the session finished in the meantime; treat as a fresh press
		if o.machine.State() == Idle {
			o.startRecording(Idle)
		}
		return
	}
	if sess != nil {
		sess.cancel()
		<-sess.done
	}
	o.current = nil
	o.startRecording(Cancelling)
}

func (o *Orchestrator) startRecording(from State) {
	if o.micTest {
		log.Warn("recording refused: mic test in progress")
		o.deps.Events.SessionFailed("", &InvalidTransitionError{Action: "start recording", State: o.machine.State()})
		if from == Cancelling {
			// unwind so the machine is not stuck in a transient state
			o.machine.Transition(Cancelling, Idle, "abort recording")
		}
		return
	}
	if err := o.machine.Transition(from, Recording, "start recording"); err != nil {
		log.Warnf("start recording: %v", err)
		return
	}

	o.deps.Ring.Clear()
	o.deps.Gate.ResetLevel()
	o.overflows = o.deps.Ring.Overflows()

	if err := o.deps.Recorder.Start(o.opts.Device); err != nil {
		o.machine.Transition(Recording, Idle, "abort recording")
		log.Errorf("capture start failed: %v", err)
		o.deps.Events.SessionFailed("", err)
		return
	}

	o.drainStop = make(chan struct{})
	o.drainRes = make(chan []int16, 1)
	go o.drainLoop(o.drainStop, o.drainRes)

	if o.opts.MaxDuration > 0 {
		o.maxTimer = time.AfterFunc(o.opts.MaxDuration, o.forceStop)
	}
}

// stopRecording is the Recording→Processing edge. A release in any other
// state is a no-op.
func (o *Orchestrator) stopRecording(action string) {
	if o.machine.State() != Recording {
		return
	}
	if err := o.machine.Transition(Recording, Processing, action); err != nil {
		return
	}
	if o.maxTimer != nil {
		o.maxTimer.Stop()
		o.maxTimer = nil
	}
	o.deps.Recorder.Stop()
	close(o.drainStop)
	samples := <-o.drainRes

	if dropped := o.deps.Ring.Overflows() - o.overflows; dropped > 0 {
		log.Overflow(dropped)
	}

	sess := newSession(o.baseCtx, o.opts.Mode)
	o.current = sess
	log.SessionStart(sess.id, sess.mode)
	go o.run(sess, samples)
}

func (o *Orchestrator) forceStop() {
	o.lock()
	defer o.unlock()
	log.Warn("max recording duration reached, forcing stop")
	o.stopRecording("stop recording at max duration")
}

// drainLoop is the single ring consumer while recording: it accumulates
// samples and feeds the level meter. On stop it performs one final drain
// and hands the buffer back.
func (o *Orchestrator) drainLoop(stop chan struct{}, result chan []int16) {
	var buf []int16
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			for _, f := range o.deps.Ring.Drain() {
				buf = append(buf, f.Samples...)
			}
			result <- buf
			return
		case <-ticker.C:
			frames := o.deps.Ring.Drain()
			for _, f := range frames {
				o.deps.Gate.Observe(f.Samples)
				buf = append(buf, f.Samples...)
			}
			if len(frames) > 0 {
				o.deps.Events.AudioLevel(o.deps.Gate.Level())
			}
		}
	}
}

// run processes one finished recording. Deferred blocks unwind in order:
// output finalize first, then the Processing→Idle transition, then the
// done signal that barge-in waits on.
func (o *Orchestrator) run(s *session, samples []int16) {
	defer close(s.done)
	defer func() {
		if s.cancelled() {
			// barge-in owns the Cancelling→Recording edge
			return
		}
		if err := o.machine.Transition(Processing, Idle, "finish session"); err != nil {
			log.Warnf("finish session: %v", err)
		}
	}()

	u, err := o.deps.Gate.Trim(samples)
	if err != nil {
		log.Warnf("silence trim failed open: %v", err)
	}
	if u.Empty {
		log.SessionEnd(s.id, true, 0)
		o.deps.Events.SessionEmpty(s.id)
		return
	}
	if s.cancelled() {
		return
	}

	if err := o.deps.Output.Begin(); err != nil {
		o.fail(s, err)
		return
	}
	ok := false
	defer func() { o.deps.Output.Finalize(ok) }()

	payload, err := o.deps.Encoder.Encode(u.Samples)
	if err != nil {
		o.fail(s, err)
		return
	}
	if s.cancelled() {
		return
	}

	audioSeconds := float64(len(u.Samples)) / float64(o.opts.SampleRate)
	transcribeStart := time.Now()
	text, err := o.deps.Transcriber.Transcribe(s.ctx, transcriber.Request{
		Audio:       payload,
		FileName:    o.deps.Encoder.FileName(),
		ContentType: o.deps.Encoder.ContentType(),
		SampleRate:  o.opts.SampleRate,
		Language:    o.opts.Language,
	})
	if s.cancelled() {
		return
	}
	if err != nil {
		o.fail(s, err)
		return
	}
	log.Transcription(o.deps.Transcriber.Name(), audioSeconds,
		float64(time.Since(transcribeStart).Milliseconds()), len(text))

	fl := newFlusher(s.ctx, o.deps.Output, o.opts.FlushInterval)
	enhErr := o.deps.Enhancer.Enhance(s.ctx, text, s.mode, fl.Add)
	flErr := fl.Close()
	if s.cancelled() {
		return
	}
	if enhErr != nil {
		o.fail(s, enhErr)
		return
	}
	if flErr != nil {
		o.fail(s, flErr)
		return
	}

	ok = true
	final := fl.Text()
	log.SessionEnd(s.id, true, len(final))
	o.deps.Events.SessionComplete(s.id, final)

	if o.deps.History != nil {
		rec := history.NewRecord(s.id, text, final, s.mode, time.Duration(audioSeconds*float64(time.Second)))
		go func() {
			if err := o.deps.History.Append(context.Background(), rec); err != nil {
				log.Warnf("history append failed: %v", err)
			}
		}()
	}
}

// fail reports a terminal session error exactly once.
func (o *Orchestrator) fail(s *session, err error) {
	log.Errorf("session %s failed: %v", s.id, err)
	log.SessionEnd(s.id, false, 0)
	o.deps.Events.SessionFailed(s.id, err)
}

// StartMicTest begins a level-meter run that is mutually exclusive with
// recording.
func (o *Orchestrator) StartMicTest() error {
	o.lock()
	defer o.unlock()
	if st := o.machine.State(); st != Idle {
		return &InvalidTransitionError{Action: "start mic test", State: st}
	}
	if o.micTest {
		return nil
	}
	o.deps.Ring.Clear()
	o.deps.Gate.ResetLevel()
	if err := o.deps.Recorder.Start(o.opts.Device); err != nil {
		return err
	}
	o.drainStop = make(chan struct{})
	o.drainRes = make(chan []int16, 1)
	go o.drainLoop(o.drainStop, o.drainRes)
	o.micTest = true
	return nil
}

// StopMicTest ends the level-meter run. Idempotent.
func (o *Orchestrator) StopMicTest() {
	o.lock()
	defer o.unlock()
	if !o.micTest {
		return
	}
	o.deps.Recorder.Stop()
	close(o.drainStop)
	<-o.drainRes
	o.micTest = false
}

// Close cancels any in-flight work and returns the machine to Idle.
func (o *Orchestrator) Close() {
	o.lock()
	defer o.unlock()

	if o.micTest {
		o.deps.Recorder.Stop()
		close(o.drainStop)
		<-o.drainRes
		o.micTest = false
	}

	switch o.machine.State() {
	case Recording:
		if o.maxTimer != nil {
			o.maxTimer.Stop()
			o.maxTimer = nil
		}
		o.deps.Recorder.Stop()
		close(o.drainStop)
		<-o.drainRes
		o.machine.Transition(Recording, Idle, "shutdown")
	case Processing:
		if sess := o.current; sess != nil {
			sess.cancel()
			<-sess.done
		}
		o.current = nil
		o.machine.Transition(Processing, Idle, "shutdown")
	}
	o.baseCancel()
}
