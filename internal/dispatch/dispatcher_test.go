package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"Lavka/internal/model"
	"Lavka/pkg/gateway"
	"Lavka/pkg/logger"
)

type fakeRecipients struct {
	mu      sync.Mutex
	list    []*model.Recipient
	blocked map[int64]bool
	touched map[int64]int
}

func newFakeRecipients(chatIDs ...int64) *fakeRecipients {
	f := &fakeRecipients{
		blocked: make(map[int64]bool),
		touched: make(map[int64]int),
	}
	for i, chatID := range chatIDs {
		r := &model.Recipient{ChatID: chatID, Reachable: true}
		r.ID = int64(i + 1)
		f.list = append(f.list, r)
	}
	return f
}

func (f *fakeRecipients) ListReachable(_ context.Context) ([]*model.Recipient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Recipient
	for _, r := range f.list {
		if !f.blocked[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipients) MarkBlocked(_ context.Context, id int64, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocked[id] = true
	return nil
}

func (f *fakeRecipients) TouchContact(_ context.Context, id int64, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[id]++
	return nil
}

type fakeAttempts struct {
	mu       sync.Mutex
	appended []*model.DeliveryAttempt
}

func (f *fakeAttempts) Append(_ context.Context, a *model.DeliveryAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, a)
	return nil
}

func (f *fakeAttempts) SentRecipientIDs(_ context.Context, mailingID int64) (map[int64]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]struct{})
	for _, a := range f.appended {
		if a.MailingID == mailingID && a.Outcome == model.AttemptOutcomeSent {
			out[a.RecipientID] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeAttempts) LastAttemptNumber(_ context.Context, mailingID, recipientID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	last := 0
	for _, a := range f.appended {
		if a.MailingID == mailingID && a.RecipientID == recipientID && a.AttemptNumber > last {
			last = a.AttemptNumber
		}
	}
	return last, nil
}

func (f *fakeAttempts) countFor(recipientID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.appended {
		if a.RecipientID == recipientID {
			n++
		}
	}
	return n
}

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func testMailing(id int64) *model.Mailing {
	m := &model.Mailing{Content: "hello", Status: model.MailingStatusInProgress}
	m.ID = id
	return m
}

// 发送成功、被拉黑、临时失败后重试成功三类收件人混在一起，
// 所有人都有明确结局，任务应当收敛到 completed。
func TestDispatchMixedOutcomes(t *testing.T) {
	recipients := newFakeRecipients(100, 200, 300)
	attempts := &fakeAttempts{}
	gw := gateway.NewMockClient()
	gw.Enqueue(200, gateway.OutcomeBlocked)
	gw.Enqueue(300, gateway.OutcomeTransient, gateway.OutcomeTransient, gateway.OutcomeOK)

	d := New(recipients, attempts, gw, Options{RatePerSec: 1000, MaxAttempts: 4})

	report, err := d.Dispatch(context.Background(), testMailing(1))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if report.Sent != 2 || report.Blocked != 1 || report.TransientFailed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.FinalStatus() != model.MailingStatusCompleted {
		t.Fatalf("expected completed, got %s", report.FinalStatus())
	}
	if !recipients.blocked[2] {
		t.Fatal("blocked recipient must be flipped to unreachable")
	}
	if got := gw.CallCount(300); got != 3 {
		t.Fatalf("expected 3 sends for the flaky recipient, got %d", got)
	}
}

// 持续临时失败的收件人恰好消耗 MaxAttempts 次尝试，
// 保持可达，任务落在 partially_failed。
func TestDispatchTransientExhaustion(t *testing.T) {
	recipients := newFakeRecipients(100)
	attempts := &fakeAttempts{}
	gw := gateway.NewMockClient()
	gw.Enqueue(100,
		gateway.OutcomeTransient,
		gateway.OutcomeTransient,
		gateway.OutcomeTransient,
	)

	d := New(recipients, attempts, gw, Options{RatePerSec: 1000, MaxAttempts: 3})

	report, err := d.Dispatch(context.Background(), testMailing(2))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if report.TransientFailed != 1 || report.Sent != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.FinalStatus() != model.MailingStatusPartiallyFailed {
		t.Fatalf("expected partially_failed, got %s", report.FinalStatus())
	}
	if got := gw.CallCount(100); got != 3 {
		t.Fatalf("expected exactly MaxAttempts sends, got %d", got)
	}
	if recipients.blocked[1] {
		t.Fatal("transiently failing recipient must stay reachable")
	}
	if got := attempts.countFor(1); got != 3 {
		t.Fatalf("expected 3 audit records, got %d", got)
	}
}

// 第一轮已经送达的收件人在续传时被整体跳过，不会被触达第二次
func TestDispatchResumeSkipsDelivered(t *testing.T) {
	recipients := newFakeRecipients(100, 200, 300)
	attempts := &fakeAttempts{}
	gw := gateway.NewMockClient()
	mailing := testMailing(3)

	// 模拟第一轮已送达前两位
	attempts.Append(context.Background(), &model.DeliveryAttempt{
		MailingID: mailing.ID, RecipientID: 1, AttemptNumber: 1, Outcome: model.AttemptOutcomeSent,
	})
	attempts.Append(context.Background(), &model.DeliveryAttempt{
		MailingID: mailing.ID, RecipientID: 2, AttemptNumber: 1, Outcome: model.AttemptOutcomeSent,
	})

	d := New(recipients, attempts, gw, Options{RatePerSec: 1000, MaxAttempts: 4})

	report, err := d.Dispatch(context.Background(), mailing)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if report.Sent != 1 || report.ResumedSent != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if gw.CallCount(100) != 0 || gw.CallCount(200) != 0 {
		t.Fatal("already delivered recipients must not be contacted again")
	}
	if gw.CallCount(300) != 1 {
		t.Fatalf("expected exactly one send for the remaining recipient, got %d", gw.CallCount(300))
	}
}

// 限速器对全部发送生效：Burst=1 时发送间隔不低于 1/rate
func TestDispatchHonorsRateLimit(t *testing.T) {
	recipients := newFakeRecipients(1, 2, 3, 4, 5, 6)
	attempts := &fakeAttempts{}
	gw := gateway.NewMockClient()

	d := New(recipients, attempts, gw, Options{RatePerSec: 50, Burst: 1, MaxAttempts: 1})

	start := time.Now()
	report, err := d.Dispatch(context.Background(), testMailing(4))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	elapsed := time.Since(start)

	if report.Sent != 6 {
		t.Fatalf("expected 6 sent, got %+v", report)
	}
	// 第一发即时，其余 5 发各等 20ms
	if elapsed < 90*time.Millisecond {
		t.Fatalf("6 sends at 50/s finished too fast: %s", elapsed)
	}
}

// 1000 个发送请求一次性涌入，30/s 上限下任意 1 秒滑动窗口内
// 放行的发送不得超过 30。用限速器的预约接口推演放行时刻，
// 不真实等待 33 秒。
func TestSendPacingWithinAnySlidingWindow(t *testing.T) {
	d := New(newFakeRecipients(), &fakeAttempts{}, gateway.NewMockClient(), Options{RatePerSec: 30, MaxAttempts: 1})

	const sends = 1000
	const ceiling = 30
	window := time.Second

	now := time.Now()
	times := make([]time.Time, 0, sends)
	for i := 0; i < sends; i++ {
		res := d.limiter.ReserveN(now, 1)
		if !res.OK() {
			t.Fatalf("reservation %d rejected", i)
		}
		now = now.Add(res.DelayFrom(now))
		times = append(times, now)
	}

	maxInWindow := 0
	lo := 0
	for hi := range times {
		for times[hi].Sub(times[lo]) >= window {
			lo++
		}
		if n := hi - lo + 1; n > maxInWindow {
			maxInWindow = n
		}
	}

	if maxInWindow > ceiling {
		t.Fatalf("%d sends inside one %s window, ceiling is %d", maxInWindow, window, ceiling)
	}
}

// 预算耗尽时任务中断而不是悬挂，报告带上 Interrupted 标记
func TestDispatchBudgetInterrupts(t *testing.T) {
	recipients := newFakeRecipients(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	attempts := &fakeAttempts{}
	gw := gateway.NewMockClient()

	d := New(recipients, attempts, gw, Options{
		RatePerSec:  20,
		Burst:       1,
		MaxAttempts: 1,
		Budget:      120 * time.Millisecond,
	})

	report, err := d.Dispatch(context.Background(), testMailing(5))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if !report.Interrupted {
		t.Fatalf("expected interrupted report, got %+v", report)
	}
	if report.Sent == 0 || report.Sent == len(recipients.list) {
		t.Fatalf("expected partial progress, got %+v", report)
	}
	if report.FinalStatus() != model.MailingStatusPartiallyFailed {
		t.Fatalf("expected partially_failed after interruption, got %s", report.FinalStatus())
	}
}
