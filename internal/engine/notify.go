package engine

import "time"

// Notice is a transient, non-blocking message for the user.
type Notice struct {
	At      time.Time
	Message string
	Err     error
}

const noticeBuffer = 64

// noticeQueue never blocks a writer; when full the oldest notice is dropped.
type noticeQueue struct {
	ch chan Notice
}

func newNoticeQueue() *noticeQueue {
	return &noticeQueue{ch: make(chan Notice, noticeBuffer)}
}

func (q *noticeQueue) push(n Notice) {
	for {
		select {
		case q.ch <- n:
			return
		default:
		}
		select {
		case <-q.ch:
		default:
		}
	}
}

func (q *noticeQueue) drain() []Notice {
	var out []Notice
	for {
		select {
		case n := <-q.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}
