package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HandleHealth reports the rotation and the host's load.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := map[string]any{
		"uptime_s":        time.Since(s.startTime).Seconds(),
		"scene":           s.rotation.Current(),
		"advances":        s.rotation.Advances(),
		"frame_id":        s.frameID,
		"viewers":         len(s.sessions),
		"preview_clients": len(s.preview),
	}
	s.mu.RUnlock()

	if vm, err := mem.VirtualMemory(); err == nil {
		resp["mem_used_pct"] = vm.UsedPercent
	}
	if avg, err := load.Avg(); err == nil {
		resp["load1"] = avg.Load1
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
