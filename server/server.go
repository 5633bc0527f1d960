package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dietracker/matchserver/broadcast"
	"github.com/dietracker/matchserver/config"
	"github.com/dietracker/matchserver/game"
	"github.com/dietracker/matchserver/logger"
	"github.com/dietracker/matchserver/match"
	"github.com/dietracker/matchserver/models"
	"github.com/dietracker/matchserver/monitor"
	"github.com/dietracker/matchserver/network"
	"github.com/dietracker/matchserver/persistence"
	"github.com/dietracker/matchserver/rating"
	admin "github.com/dietracker/matchserver/rpc"
	"github.com/dietracker/matchserver/services"
	"github.com/dietracker/matchserver/session"
	"github.com/dietracker/matchserver/state"
	"github.com/dietracker/matchserver/timer"
)

type MatchServer struct {
	addr           string
	upgrader       websocket.Upgrader
	matchManager   *match.Manager
	sessionManager *session.Manager
	profileService *services.ProfileService
	broadcaster    broadcast.Broadcaster
	rpcServer      *admin.Server
	timers         *timer.Manager
	monitor        *monitor.Monitor
	db             persistence.Database
	defaults       config.MatchConfig
	shutdownChan   chan struct{}
}

func NewMatchServer(addr, rpcAddr string, db persistence.Database, defaults config.MatchConfig) *MatchServer {
	timers := timer.NewManager()

	s := &MatchServer{
		addr:           addr,
		matchManager:   match.NewManager(db, timers),
		sessionManager: session.NewManager(),
		profileService: services.NewProfileService(db),
		timers:         timers,
		db:             db,
		defaults:       defaults,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewMatchBroadcaster(s.matchManager, s.sessionManager)

	// 初始化RPC服务器
	rpcServer, err := admin.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	adminService := admin.NewAdminService(s.matchManager, s.profileService)
	rpc.Register(adminService)

	return s
}

// SetMonitor attaches runtime metrics. Optional; the server runs without.
func (s *MatchServer) SetMonitor(m *monitor.Monitor) {
	s.monitor = m
}

func (s *MatchServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Match server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *MatchServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.matchManager.Stop()
	s.timers.Stop()
}

func (s *MatchServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *MatchServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncConnectedClients()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if sess.RoomCode != "" {
			if mt, exists := s.matchManager.GetMatch(sess.RoomCode); exists {
				mt.Detach(sess.GetID())
			}
		}
		if s.monitor != nil {
			s.monitor.DecConnectedClients()
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *MatchServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeIdentify:
		s.handleIdentify(sess, packet)
	case network.MsgTypeCreateMatch:
		s.handleCreateMatch(sess, packet)
	case network.MsgTypeJoinMatch:
		s.handleJoinMatch(sess, packet)
	case network.MsgTypeLeaveMatch:
		s.handleLeaveMatch(sess, packet)
	case network.MsgTypeJoinSlot:
		s.handleJoinSlot(sess, packet)
	case network.MsgTypePlayerAction:
		s.handlePlayerAction(sess, packet)
	case network.MsgTypeSaveMatch:
		s.handleSaveMatch(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// sendError surfaces a failure to the triggering session. Failures are
// terminal for the action; the user retries manually.
func (s *MatchServer) sendError(sess *session.Session, err error) {
	sess.SendJSON(network.MsgTypeError, map[string]string{"error": err.Error()})
}

func (s *MatchServer) handleIdentify(sess *session.Session, packet *network.Packet) {
	var req struct {
		UserID   string `json:"userId"`
		Nickname string `json:"nickname"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}
	if req.UserID == "" {
		s.sendError(sess, match.ErrNotAuthenticated)
		return
	}

	nickname := req.Nickname
	if nickname != "" {
		if err := s.profileService.SetNickname(req.UserID, nickname); err != nil {
			logger.Log.Warnf("Failed to store nickname for %s: %v", req.UserID, err)
		}
	} else {
		stored, err := s.profileService.Nickname(req.UserID)
		if err != nil {
			logger.Log.Warnf("Failed to load nickname for %s: %v", req.UserID, err)
		}
		nickname = stored
	}

	sess.Identify(req.UserID, nickname)
	logger.Log.Infof("Session %s identified as user %s", sess.GetID(), req.UserID)

	resp := map[string]string{"userId": req.UserID, "nickname": nickname}
	sess.SendJSON(network.MsgTypeIdentify, resp)
}

func (s *MatchServer) handleCreateMatch(sess *session.Session, packet *network.Packet) {
	setup := models.DefaultMatchSetup()
	setup.GameScoreLimit = s.defaults.GameScoreLimit
	setup.SinkPoints = s.defaults.SinkPoints
	setup.WinByTwo = s.defaults.WinByTwo

	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &setup); err != nil {
			s.sendError(sess, err)
			return
		}
	}
	if setup.GameScoreLimit < 1 {
		setup.GameScoreLimit = s.defaults.GameScoreLimit
	}

	userID, _ := sess.Identity()
	mt, err := s.matchManager.CreateMatch(userID, setup, s.broadcaster)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	mt.Attach(sess)
	if s.monitor != nil {
		s.monitor.SetLiveMatches(s.matchManager.ActiveCount())
	}

	logger.Log.Infof("Session %s created match %s", sess.GetID(), mt.GetRoomCode())

	sess.SendJSON(network.MsgTypeCreateMatch, mt.Snapshot())
}

func (s *MatchServer) handleJoinMatch(sess *session.Session, packet *network.Packet) {
	var req map[string]string
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}
	roomCode := req["roomCode"]
	if !match.ValidRoomCode(roomCode) {
		s.sendError(sess, errors.New("invalid room code"))
		return
	}

	mt, exists := s.matchManager.GetMatch(roomCode)
	if !exists {
		// Not in memory; the scorekeeper may be reconnecting after a
		// restart, so fall back to the store.
		live, err := s.db.LoadLiveMatch(roomCode)
		if err != nil {
			if errors.Is(err, persistence.ErrRecordNotFound) {
				s.sendError(sess, errors.New("match not found"))
			} else {
				s.sendError(sess, err)
			}
			return
		}
		mt = s.matchManager.Resume(live, s.broadcaster)
		if s.monitor != nil {
			s.monitor.SetLiveMatches(s.matchManager.ActiveCount())
		}
	}

	mt.Attach(sess)
	logger.Log.Infof("Session %s joined match %s", sess.GetID(), roomCode)

	sess.SendJSON(network.MsgTypeMatchSync, mt.Snapshot())
}

func (s *MatchServer) handleLeaveMatch(sess *session.Session, packet *network.Packet) {
	if sess.RoomCode == "" {
		return
	}
	if mt, exists := s.matchManager.GetMatch(sess.RoomCode); exists {
		mt.Detach(sess.GetID())
	}
}

func (s *MatchServer) handleJoinSlot(sess *session.Session, packet *network.Packet) {
	var req struct {
		Slot int `json:"slot"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}

	mt, exists := s.matchManager.GetMatch(sess.RoomCode)
	if !exists {
		s.sendError(sess, errors.New("not attached to a match"))
		return
	}

	userID, nickname := sess.Identity()
	if userID == "" {
		s.sendError(sess, match.ErrNotAuthenticated)
		return
	}
	if nickname == "" {
		stored, err := s.profileService.Nickname(userID)
		if err != nil {
			logger.Log.Warnf("Failed to load nickname for %s: %v", userID, err)
		}
		nickname = stored
	}

	if err := mt.JoinSlot(req.Slot, userID, nickname); err != nil {
		s.sendError(sess, err)
		return
	}

	logger.Log.Infof("User %s claimed slot %d in match %s", userID, req.Slot, sess.RoomCode)

	resp := map[string]interface{}{"slot": req.Slot, "userId": userID}
	sess.SendJSON(network.MsgTypeJoinSlot, resp)
}

// isPlayAction reports whether an action envelope carries a play
// submission, so the play counters only move for actual plays.
func isPlayAction(data []byte) bool {
	var action state.Action
	if err := json.Unmarshal(data, &action); err != nil {
		return false
	}
	return action.Type == state.ActionPlay
}

func (s *MatchServer) handlePlayerAction(sess *session.Session, packet *network.Packet) {
	if sess.RoomCode == "" {
		logger.Log.Warnf("Session %s sent an action but is not in a match", sess.GetID())
		s.sendError(sess, errors.New("not attached to a match"))
		return
	}

	mt, exists := s.matchManager.GetMatch(sess.RoomCode)
	if !exists {
		logger.Log.Errorf("Match %s not found for session %s", sess.RoomCode, sess.GetID())
		s.sendError(sess, errors.New("match not found"))
		return
	}

	start := time.Now()
	err := mt.HandleAction(sess, packet.Data)
	if s.monitor != nil && err == nil && isPlayAction(packet.Data) {
		s.monitor.IncPlaysSubmitted()
		s.monitor.ObserveSyncLatency(time.Since(start))
	}
	if err != nil {
		if errors.Is(err, game.ErrInvalidPlay) ||
			errors.Is(err, state.ErrMatchNotStarted) ||
			errors.Is(err, state.ErrMatchFinished) {
			s.sendError(sess, err)
			return
		}
		logger.Log.Errorf("Error handling action in match %s: %v", mt.GetRoomCode(), err)
		s.sendError(sess, err)
	}
}

func (s *MatchServer) handleSaveMatch(sess *session.Session, packet *network.Packet) {
	mt, exists := s.matchManager.GetMatch(sess.RoomCode)
	if !exists {
		s.sendError(sess, errors.New("not attached to a match"))
		return
	}

	userID, _ := sess.Identity()
	rec, err := mt.Save(userID)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	s.matchManager.RemoveMatch(mt.GetRoomCode())
	if s.monitor != nil {
		s.monitor.SetLiveMatches(s.matchManager.ActiveCount())
	}

	logger.Log.Infof("Match %s archived for user %s", rec.RoomCode, rec.UserID)

	reply := map[string]interface{}{
		"match":         rec,
		"playerRatings": rating.RateAll(rec.PlayerStats),
	}
	sess.SendJSON(network.MsgTypeMatchSaved, reply)
}
