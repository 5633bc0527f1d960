package rpc

import (
	"fmt"
	"net"
	"net/rpc"

	"github.com/dietracker/matchserver/logger"
	"github.com/dietracker/matchserver/match"
	"github.com/dietracker/matchserver/models"
	"github.com/dietracker/matchserver/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes live-match inspection over net/rpc for operational
// tooling.
type AdminService struct {
	matchManager *match.Manager
	profiles     *services.ProfileService
}

// NewAdminService creates a new AdminService.
func NewAdminService(mm *match.Manager, ps *services.ProfileService) *AdminService {
	return &AdminService{matchManager: mm, profiles: ps}
}

type ListMatchesArgs struct{}

type ListMatchesReply struct {
	RoomCodes []string
}

// ListMatches returns the room codes of every match held in memory.
func (a *AdminService) ListMatches(args *ListMatchesArgs, reply *ListMatchesReply) error {
	reply.RoomCodes = a.matchManager.RoomCodes()
	return nil
}

type GetMatchArgs struct {
	RoomCode string
}

type GetMatchReply struct {
	Match *models.LiveMatch
}

// GetMatch returns a snapshot of one live match.
func (a *AdminService) GetMatch(args *GetMatchArgs, reply *GetMatchReply) error {
	mt, exists := a.matchManager.GetMatch(args.RoomCode)
	if !exists {
		return fmt.Errorf("match %s not found", args.RoomCode)
	}
	reply.Match = mt.Snapshot()
	return nil
}

type CareerStatsArgs struct {
	UserID string
}

type CareerStatsReply struct {
	Stats *models.CareerStats
}

// GetCareerStats aggregates a user's archived matches.
func (a *AdminService) GetCareerStats(args *CareerStatsArgs, reply *CareerStatsReply) error {
	stats, err := a.profiles.CareerStats(args.UserID)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}
