package application

import (
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"api-monitor/domain"
)

// Cache keys cover both the collection contents and every query field, so a
// reloaded collection never serves a stale page.

type digest struct {
	*xxhash.Digest
}

func newDigest(kind string) digest {
	d := digest{xxhash.New()}
	d.str(kind)
	return d
}

func (d digest) str(s string) {
	_, _ = d.WriteString(s)
	_, _ = d.Write([]byte{0})
}

func (d digest) num(n int64) {
	d.str(strconv.FormatInt(n, 10))
}

func (d digest) ts(t time.Time) {
	d.num(t.UnixNano())
}

func (d digest) bound(b *int64) {
	if b == nil {
		d.str("-")
		return
	}
	d.num(*b)
}

func (d digest) filter(f domain.Filter) {
	d.str(f.Search)
	d.str(f.Method.String())
	d.str(f.Status.String())
	d.str(string(f.Window))
}

func (d digest) paging(s domain.SortSpec, page, size int) {
	d.str(string(s.Field))
	d.str(string(s.Direction))
	d.num(int64(page))
	d.num(int64(size))
}

func requestsKey(items []domain.Request, q domain.RequestQuery) uint64 {
	d := newDigest("requests")
	d.num(int64(len(items)))
	for _, r := range items {
		d.str(r.ID)
		d.str(string(r.Method))
		d.str(r.Path)
		d.num(int64(r.Status))
		d.num(r.ResponseTime)
		d.ts(r.CreatedAt)
	}
	d.filter(q.Filter.Filter)
	d.bound(q.Filter.MinResponseTime)
	d.bound(q.Filter.MaxResponseTime)
	d.paging(q.Sort, q.Page, q.PageSize)
	return d.Sum64()
}

func problemsKey(items []domain.Problem, q domain.ProblemQuery) uint64 {
	d := newDigest("problems")
	d.num(int64(len(items)))
	for _, p := range items {
		d.str(p.ID)
		d.str(p.Title)
		d.str(p.Description)
		d.str(string(p.Method))
		d.str(p.Path)
		d.num(p.Occurrences)
		d.ts(p.LastOccurrence)
		d.str(string(p.Severity))
		d.num(int64(p.Status))
	}
	d.filter(q.Filter.Filter)
	d.str(q.Filter.Severity.String())
	d.paging(q.Sort, q.Page, q.PageSize)
	return d.Sum64()
}
