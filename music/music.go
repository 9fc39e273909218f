// Package music implements the local-file music queue. The queue is a plain
// ordered list; playback hand-off happens through the Sink interface so the
// queue logic stays free of codec concerns.
package music

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrQueueEmpty = errors.New("the queue is empty")
	ErrNotPlaying = errors.New("no music is playing")
	ErrNotPaused  = errors.New("music is not paused")
	ErrNoSuchSong = errors.New("song file not found")
)

// Track is one queued song.
type Track struct {
	Title       string
	Path        string
	RequestedBy string
}

// Sink receives tracks for actual playback. The default implementation does
// nothing; a voice-connected implementation can be swapped in.
type Sink interface {
	Play(t Track) error
	Stop()
}

// NopSink discards playback.
type NopSink struct{}

func (NopSink) Play(Track) error { return nil }
func (NopSink) Stop()            {}

// Library lists and searches the local music directory.
type Library struct {
	dir string
}

func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// List returns the base names of all mp3 files in the library.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var songs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".mp3") {
			songs = append(songs, e.Name())
		}
	}
	return songs, nil
}

// Search returns songs whose name contains the query, or all songs when
// nothing matches, mirroring a forgiving search.
func (l *Library) Search(query string) ([]string, error) {
	all, err := l.List()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	q := strings.ToLower(query)
	var matched []string
	for _, song := range all {
		name := strings.TrimSuffix(strings.ToLower(song), ".mp3")
		if strings.Contains(name, q) {
			matched = append(matched, song)
		}
	}
	if len(matched) == 0 {
		if len(all) > 10 {
			return all[:10], nil
		}
		return all, nil
	}
	return matched, nil
}

// Resolve turns a song file name into a Track, verifying the file exists.
func (l *Library) Resolve(fileName, requestedBy string) (Track, error) {
	path := filepath.Join(l.dir, fileName)
	if _, err := os.Stat(path); err != nil {
		return Track{}, ErrNoSuchSong
	}
	title := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return Track{Title: title, Path: path, RequestedBy: requestedBy}, nil
}

// Player is one guild's music queue.
type Player struct {
	mu      sync.Mutex
	queue   []Track
	current *Track
	playing bool
	paused  bool
	sink    Sink
}

func NewPlayer(sink Sink) *Player {
	if sink == nil {
		sink = NopSink{}
	}
	return &Player{sink: sink}
}

// Enqueue appends a track and starts playback if idle. Returns the queue
// position (1-based) of the added track, 0 when it started playing
// immediately.
func (p *Player) Enqueue(t Track) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing || p.current != nil {
		p.queue = append(p.queue, t)
		return len(p.queue), nil
	}
	if err := p.startLocked(t); err != nil {
		return 0, err
	}
	return 0, nil
}

func (p *Player) startLocked(t Track) error {
	if err := p.sink.Play(t); err != nil {
		return err
	}
	p.current = &t
	p.playing = true
	p.paused = false
	return nil
}

// Skip stops the current track and starts the next queued one, if any.
func (p *Player) Skip() (*Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, ErrNotPlaying
	}
	p.sink.Stop()
	return p.advanceLocked()
}

// advanceLocked dequeues the next track. Returns nil when the queue ended.
func (p *Player) advanceLocked() (*Track, error) {
	if len(p.queue) == 0 {
		p.current = nil
		p.playing = false
		p.paused = false
		return nil, nil
	}
	next := p.queue[0]
	p.queue = p.queue[1:]
	if err := p.startLocked(next); err != nil {
		return nil, err
	}
	return &next, nil
}

// TrackEnded advances the queue after the sink finished a track.
func (p *Player) TrackEnded() (*Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.advanceLocked()
}

// Pause pauses playback.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.paused {
		return ErrNotPlaying
	}
	p.paused = true
	return nil
}

// Resume resumes paused playback.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return ErrNotPaused
	}
	p.paused = false
	return nil
}

// Stop halts playback and clears the queue.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink.Stop()
	p.queue = nil
	p.current = nil
	p.playing = false
	p.paused = false
}

// Queue returns a snapshot of the pending tracks.
func (p *Player) Queue() []Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Track, len(p.queue))
	copy(out, p.queue)
	return out
}

// NowPlaying returns the current track, or nil.
func (p *Player) NowPlaying() *Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	t := *p.current
	return &t
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Registry holds one player per guild.
type Registry struct {
	mu      sync.Mutex
	players map[string]*Player
	sink    func() Sink
}

func NewRegistry(sink func() Sink) *Registry {
	if sink == nil {
		sink = func() Sink { return NopSink{} }
	}
	return &Registry{players: make(map[string]*Player), sink: sink}
}

// For returns the guild's player, creating it on first use.
func (r *Registry) For(guildID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[guildID]
	if !ok {
		p = NewPlayer(r.sink())
		r.players[guildID] = p
	}
	return p
}

// Drop stops and removes the guild's player.
func (r *Registry) Drop(guildID string) {
	r.mu.Lock()
	p, ok := r.players[guildID]
	delete(r.players, guildID)
	r.mu.Unlock()
	if ok {
		p.Stop()
	}
}
