package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/feed"
	"github.com/matzehuels/hemicycle/pkg/frame"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// maxBody bounds the size of a submitted update.
const maxBody = 1 << 20

// BroadcastInfo describes the served broadcast.
type BroadcastInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Rows     []int  `json:"rows"`
	Seats    int    `json:"seats"`
	Entries  int    `json:"entries"`
	Tiebreak string `json:"tiebreak"`
}

// EntryState is the current state of one entry.
type EntryState struct {
	Entry    string    `json:"entry"`
	Name     string    `json:"name,omitempty"`
	Seats    int       `json:"seats"`
	Previous string    `json:"previous,omitempty"`
	State    string    `json:"state"`
	Party    string    `json:"party,omitempty"`
	Elected  bool      `json:"elected,omitempty"`
	Seq      uint64    `json:"seq,omitempty"`
	At       time.Time `json:"at,omitzero"`

	// Slots are the seats of the entry in row-major order; Fill is their
	// current dot colour.
	Slots []hemicycle.Slot `json:"slots"`
	Fill  string           `json:"fill"`
}

// SubmitResponse is returned for an accepted update.
type SubmitResponse struct {
	Update feed.Update `json:"update"`
	Frame  frame.Frame `json:"frame"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	b := s.coord.Broadcast()
	s.writeJSON(w, http.StatusOK, BroadcastInfo{
		ID:       b.ID,
		Title:    b.Config.Title,
		Rows:     b.Config.Rows,
		Seats:    b.Config.Seats(),
		Entries:  len(b.Config.Entries),
		Tiebreak: b.Config.Tiebreaker().String(),
	})
}

var contentTypes = map[string]string{
	pipeline.FormatText: "text/plain; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleAssignment(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "%v", err))
		return
	}
	fills := pipeline.Fills(s.coord.Frame())
	data, err := pipeline.Render(r.Context(), s.coord.Broadcast().Assignment, format, fills)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Write(data)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coord.Frame())
}

// handleFrames streams every new frame as a server-sent event.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "streaming not supported"))
		return
	}
	ch, unsubscribe := s.coord.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case f, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(f)
			if err != nil {
				s.logger.Error("encode frame", "err", err)
				return
			}
			fmt.Fprintf(w, "id: %d\nevent: frame\ndata: %s\n\n", f.Updates, data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coord.LatestAll())
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "entry")
	b := s.coord.Broadcast()
	for _, e := range b.Config.ResultEntries() {
		if e.ID != id {
			continue
		}
		st := EntryState{
			Entry:    e.ID,
			Name:     e.Name,
			Seats:    e.SeatCount(),
			Previous: e.Previous.ID,
			State:    pipeline.Update{}.State().String(),
			Slots:    b.Assignment.EntrySlots(id),
		}
		if len(st.Slots) > 0 {
			f := s.coord.Frame()
			if d, ok := f.Dot(st.Slots[0]); ok {
				st.Fill = d.Fill
			}
		}
		if u, ok := s.coord.Latest(id); ok {
			st.State = u.State().String()
			st.Party = u.Party
			st.Elected = u.Elected
			st.Seq = u.Seq
			st.At = u.At
		}
		s.writeJSON(w, http.StatusOK, st)
		return
	}
	s.writeError(w, errors.New(errors.ErrCodeNotFound, "unknown entry %q", id))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var u feed.Update
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&u); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode update: %v", err))
		return
	}
	recorded, f, err := s.coord.Submit(r.Context(), "http", u)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SubmitResponse{Update: recorded, Frame: f})
}
