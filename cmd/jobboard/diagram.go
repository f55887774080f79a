package main

import (
	"strconv"

	"github.com/aretw0/introspection"

	"github.com/aretw0/jobboard/pkg/adapters/rest"
	"github.com/aretw0/jobboard/pkg/adapters/snapshot"
	"github.com/aretw0/jobboard/pkg/core"
)

type boardNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []boardNode
}

// boardDiagram renders the service and its adapters as a Mermaid tree.
// Statuses are the classes of introspection.DefaultStyles().
func boardDiagram(st core.ServiceState, cols []core.Column) string {
	sessionStatus := "failed"
	if st.User != "" {
		sessionStatus = "running"
	}

	remote := boardNode{
		Name:     "Remote",
		Status:   sessionStatus,
		Metadata: map[string]string{"type": st.RemoteType},
	}
	if rs, ok := st.Remote.(rest.ClientState); ok {
		remote.Metadata["url"] = rs.BaseURL
		remote.Metadata["requests"] = strconv.Itoa(rs.Requests)
		remote.Metadata["failures"] = strconv.Itoa(rs.Failures)
	}

	board := boardNode{
		Name:   "Board",
		Status: "running",
		Metadata: map[string]string{
			"type":    "container",
			"jobs":    strconv.Itoa(st.Jobs),
			"pending": strconv.Itoa(st.PendingMoves),
		},
	}
	for _, col := range cols {
		status := "suspended"
		if len(col.Items) > 0 {
			status = "running"
		}
		board.Children = append(board.Children, boardNode{
			Name:     string(col.Stage),
			Status:   status,
			Metadata: map[string]string{"jobs": strconv.Itoa(len(col.Items))},
		})
	}

	root := boardNode{
		Name:     "Service",
		Status:   "running",
		Metadata: map[string]string{"type": "process", "user": st.User},
		Children: []boardNode{remote, board},
	}

	if st.SnapshotType != "" {
		snap := boardNode{
			Name:     "Snapshot",
			Status:   "suspended",
			Metadata: map[string]string{"type": st.SnapshotType},
		}
		if ss, ok := st.Snapshots.(snapshot.StoreState); ok {
			snap.Metadata["path"] = ss.Path
			if ss.Following {
				snap.Status = "running"
			}
		}
		root.Children = append(root.Children, snap)
	}

	config := introspection.DefaultDiagramConfig()
	config.SecondaryID = "board"
	config.SecondaryLabel = "Board Topology"
	return introspection.TreeDiagram(root, config)
}
