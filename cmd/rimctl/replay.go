package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"reciprocity/internal/artifact"
	"reciprocity/internal/enforcer"
	id "reciprocity/pkg/domain"
	dErrors "reciprocity/pkg/domain-errors"
)

// Operation is one line of the replayed log. Artifact ids are assigned by the
// ingestion gate at replay time, so ingest operations carry an Alias that
// later transition/log_reuse operations reference.
type Operation struct {
	Op         string   `json:"op"`
	UserID     string   `json:"user_id,omitempty"`
	Extractive bool     `json:"extractive,omitempty"`
	Expires    string   `json:"expires,omitempty"`
	Scope      []string `json:"scope,omitempty"`

	Payload        string   `json:"payload,omitempty"`
	RequiredScopes []string `json:"required_scopes,omitempty"`
	Alias          string   `json:"alias,omitempty"`

	ArtifactID string `json:"artifact_id,omitempty"`
	NewState   string `json:"new_state,omitempty"`
	Disclosed  bool   `json:"disclosed,omitempty"`
}

// Replay applies every operation in the log to the enforcer. Permission
// denials and invalid transitions are expected outcomes of a replayed log;
// they are reported and skipped rather than aborting the run.
func Replay(ctx context.Context, eng *enforcer.Enforcer, in io.Reader, log *slog.Logger) error {
	aliases := make(map[string]id.ArtifactID)

	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var op Operation
		if err := json.Unmarshal([]byte(text), &op); err != nil {
			return fmt.Errorf("line %d: decode operation: %w", line, err)
		}

		if err := apply(ctx, eng, op, aliases); err != nil {
			if dErrors.IsPermissionDenied(err) || dErrors.IsInvalidState(err) {
				log.Warn("operation rejected", "line", line, "op", op.Op, "error", err.Error())
				continue
			}
			return fmt.Errorf("line %d: %s: %w", line, op.Op, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read operation log: %w", err)
	}
	return nil
}

func apply(ctx context.Context, eng *enforcer.Enforcer, op Operation, aliases map[string]id.ArtifactID) error {
	switch op.Op {
	case "register_user":
		userID, err := id.ParseUserID(op.UserID)
		if err != nil {
			return err
		}
		return eng.RegisterUser(ctx, userID)

	case "set_consent":
		userID, err := id.ParseUserID(op.UserID)
		if err != nil {
			return err
		}
		_, err = eng.SetConsent(ctx, userID, op.Extractive, op.Expires, op.Scope)
		return err

	case "revoke_consent":
		userID, err := id.ParseUserID(op.UserID)
		if err != nil {
			return err
		}
		_, err = eng.RevokeConsent(ctx, userID)
		return err

	case "ingest":
		userID, err := id.ParseUserID(op.UserID)
		if err != nil {
			return err
		}
		result, err := eng.Ingest(ctx, userID, []byte(op.Payload), op.Extractive, op.RequiredScopes)
		if err != nil {
			return err
		}
		if op.Alias != "" && !result.ArtifactID.IsNil() {
			aliases[op.Alias] = result.ArtifactID
		}
		return nil

	case "transition_artifact":
		artifactID, err := resolveArtifact(op.ArtifactID, aliases)
		if err != nil {
			return err
		}
		newState, err := artifact.ParseState(op.NewState)
		if err != nil {
			return err
		}
		return eng.TransitionArtifactState(ctx, artifactID, newState)

	case "log_reuse":
		artifactID, err := resolveArtifact(op.ArtifactID, aliases)
		if err != nil {
			return err
		}
		return eng.LogReuse(ctx, artifactID, op.Disclosed)

	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown operation: "+op.Op)
	}
}

// resolveArtifact maps an alias assigned during replay, falling back to a
// literal artifact id so logs can reference pre-known ids.
func resolveArtifact(ref string, aliases map[string]id.ArtifactID) (id.ArtifactID, error) {
	if ref == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "artifact reference cannot be empty")
	}
	if resolved, ok := aliases[ref]; ok {
		return resolved, nil
	}
	return id.ArtifactID(ref), nil
}
