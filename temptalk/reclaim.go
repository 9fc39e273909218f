package temptalk

import "time"

func (m *Manager) newTimer(roomID string) *time.Timer {
	return time.AfterFunc(m.reclaimDelay, func() { m.reclaim(roomID) })
}

// armReclaim schedules a delayed re-check after a tracked room was observed
// empty. The delay absorbs the event ordering where a second member's join
// has not been seen yet. Re-arming replaces any pending check for the room.
func (m *Manager) armReclaim(roomID string) {
	count, err := m.platform.MemberCount(roomID)
	if err != nil {
		m.log.Warn().Err(err).Str("room", roomID).Msg("count room members")
		return
	}
	if count > 0 {
		return
	}

	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	if t, ok := m.timers[roomID]; ok {
		t.Stop()
	}
	m.timers[roomID] = m.newTimer(roomID)
}

// cancelReclaim drops any pending re-check for a room. Called on every path
// that removes the room from the registry, so a stale callback is provably a
// no-op rather than relying only on re-fetching the room.
func (m *Manager) cancelReclaim(roomID string) {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	if t, ok := m.timers[roomID]; ok {
		t.Stop()
		delete(m.timers, roomID)
	}
}

// reclaim is the fired re-check: delete the room only if it is still
// tracked, still exists platform-side, and is still empty.
func (m *Manager) reclaim(roomID string) {
	m.timerMu.Lock()
	delete(m.timers, roomID)
	m.timerMu.Unlock()

	room, ok := m.registry.Get(roomID)
	if !ok {
		return
	}

	exists, err := m.platform.RoomExists(roomID)
	if err != nil {
		m.log.Warn().Err(err).Str("room", roomID).Msg("check room existence")
		return
	}
	if !exists {
		// Deleted through another path racing this check.
		m.registry.Delete(roomID)
		return
	}

	count, err := m.platform.MemberCount(roomID)
	if err != nil {
		m.log.Warn().Err(err).Str("room", roomID).Msg("count room members")
		return
	}
	if count > 0 {
		return
	}

	if room.ControlMessageID != "" {
		if err := m.platform.DeleteControlMessage(room.ControlMessageID); err != nil {
			m.log.Warn().Err(err).Str("room", roomID).Msg("delete control message")
		}
	}
	if err := m.platform.DeleteRoom(roomID); err != nil {
		m.log.Error().Err(err).Str("room", roomID).Msg("auto-delete room")
		return
	}
	m.registry.Delete(roomID)
	m.log.Info().Str("room", roomID).Msg("temp room reclaimed")
}
