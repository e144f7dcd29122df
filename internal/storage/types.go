package storage

// Re-export types from models so callers of Service need one import.
import "github.com/We-are-incomplete/war-record-only-read/internal/storage/models"

type (
	MatchRecord      = models.MatchRecord
	RecordFilter     = models.RecordFilter
	Player           = models.Player
	TournamentResult = models.TournamentResult
	ImportRun        = models.ImportRun
)
