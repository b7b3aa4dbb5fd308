package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// Store persists meeting projections into the property graph and reads
// them back as assembled context. All writes are idempotent for a given
// meeting id: scalar properties are overwritten, category collections are
// replaced, and keyed nodes merge instead of duplicating.
type Store struct {
	conn   *Connector
	logger *zap.Logger
}

// NewStore creates a graph store on top of a connector
func NewStore(conn *Connector, logger *zap.Logger) *Store {
	return &Store{conn: conn, logger: logger}
}

// Configured reports whether the underlying graph store is configured
func (s *Store) Configured() bool {
	return s.conn.Configured()
}

// Ping verifies graph connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// DeriveTitle picks a display title: the first summary line when it is a
// markdown heading, otherwise the original filename.
func DeriveTitle(summary, originalFilename string) string {
	trimmed := strings.TrimSpace(summary)
	if strings.HasPrefix(trimmed, "#") {
		firstLine := trimmed
		if idx := strings.Index(trimmed, "\n"); idx >= 0 {
			firstLine = trimmed[:idx]
		}
		if title := strings.TrimSpace(strings.TrimLeft(firstLine, "#")); title != "" {
			return title
		}
	}
	return originalFilename
}

// statement is one write in the upsert plan. The op string names the
// statement in error output.
type statement struct {
	op     string
	cypher string
	params map[string]any
}

// Upsert writes the full meeting projection. Previous tag, topic,
// participant, decision and timeline attachments for the meeting are
// removed before the new ones are written, so repeated runs converge.
func (s *Store) Upsert(ctx context.Context, snapshot entities.MeetingSnapshot) error {
	session, err := s.conn.Session(ctx)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	stmts := upsertStatements(snapshot)
	for _, st := range stmts {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, st.cypher, st.params)
		})
		if err != nil {
			return fmt.Errorf("failed to %s: %w", st.op, err)
		}
	}

	if s.logger != nil {
		s.logger.Info("✅ Meeting synced to graph store",
			zap.String("meeting_id", snapshot.ID),
			zap.Int("statements", len(stmts)),
		)
	}
	return nil
}

// upsertStatements builds the ordered write plan for one meeting
// projection. Category deletions always precede the rewrites that depend
// on them, and keyed nodes merge on stable keys, so running the same plan
// twice leaves the graph unchanged.
func upsertStatements(snapshot entities.MeetingSnapshot) []statement {
	tags := ParseTags(snapshot.Tags)
	keyPoints := titledOnly(ParseMarkdownSections(snapshot.KeyPoints))
	actionItems := titledOnly(ParseMarkdownSections(snapshot.ActionItems))
	kg := ParseKnowledgeGraph(snapshot.KnowledgeGraph)
	title := DeriveTitle(snapshot.Summary, snapshot.OriginalFilename)

	meetingParams := map[string]any{"meeting_id": snapshot.ID}

	stmts := []statement{
		{
			op: "upsert meeting node",
			cypher: `
		MERGE (m:Meeting {id: $id})
		SET m += {
			original_filename: $original_filename,
			saved_filename: $saved_filename,
			created_at: $created_at,
			updated_at: $updated_at,
			status: $status,
			summary: $summary,
			key_points_markdown: $key_points,
			action_items_markdown: $action_items,
			sentiment: $sentiment,
			transcript: $transcript,
			tags_text: $tags_text,
			title: $title
		}`,
			params: map[string]any{
				"id":                snapshot.ID,
				"original_filename": snapshot.OriginalFilename,
				"saved_filename":    snapshot.SavedFilename,
				"created_at":        snapshot.CreatedAt,
				"updated_at":        snapshot.UpdatedAt,
				"status":            snapshot.Status,
				"summary":           snapshot.Summary,
				"key_points":        snapshot.KeyPoints,
				"action_items":      snapshot.ActionItems,
				"sentiment":         snapshot.Sentiment,
				"transcript":        snapshot.Transcript,
				"tags_text":         snapshot.Tags,
				"title":             title,
			},
		},
		// Replace-on-write: drop the meeting's previous tag and topic
		// links, then remove shared nodes nothing points at anymore
		{
			op: "detach tags",
			cypher: `
		MATCH (m:Meeting {id: $meeting_id})-[r:HAS_TAG]->(:Tag)
		DELETE r`,
			params: meetingParams,
		},
		{
			op: "detach topics",
			cypher: `
		MATCH (m:Meeting {id: $meeting_id})-[r:HAS_TOPIC]->(:Topic)
		DELETE r`,
			params: meetingParams,
		},
		{
			op: "prune orphan tags",
			cypher: `
		MATCH (t:Tag) WHERE NOT (t)<-[:HAS_TAG]-() DELETE t`,
		},
		{
			op: "prune orphan topics",
			cypher: `
		MATCH (t:Topic) WHERE NOT (t)<-[:HAS_TOPIC]-() DELETE t`,
		},
		// Per-meeting category nodes are simply removed and rewritten
		{
			op: "clear participants",
			cypher: `
		MATCH (m:Meeting {id: $meeting_id})-[:HAS_PARTICIPANT]->(p:Participant {meeting_id: $meeting_id})
		DETACH DELETE p`,
			params: meetingParams,
		},
		{
			op: "clear decisions",
			cypher: `
		MATCH (m:Meeting {id: $meeting_id})-[:HAS_DECISION]->(d:Decision {meeting_id: $meeting_id})
		DETACH DELETE d`,
			params: meetingParams,
		},
		{
			op: "clear timeline",
			cypher: `
		MATCH (m:Meeting {id: $meeting_id})-[:HAS_TIMELINE]->(e:TimelineEvent {meeting_id: $meeting_id})
		DETACH DELETE e`,
			params: meetingParams,
		},
	}

	if len(tags) > 0 {
		stmts = append(stmts, statement{
			op: "write tags",
			cypher: `
		UNWIND $tags AS tag
		MERGE (t:Tag {name: tag})
		MERGE (m:Meeting {id: $meeting_id})
		MERGE (m)-[:HAS_TAG]->(t)`,
			params: map[string]any{"tags": toAnySlice(tags), "meeting_id": snapshot.ID},
		})
	}

	if len(kg.Topics) > 0 {
		stmts = append(stmts, statement{
			op: "write topics",
			cypher: `
		UNWIND $topics AS topic
		MERGE (t:Topic {name: topic})
		MERGE (m:Meeting {id: $meeting_id})
		MERGE (m)-[:HAS_TOPIC]->(t)`,
			params: map[string]any{"topics": toAnySlice(kg.Topics), "meeting_id": snapshot.ID},
		})
	}

	participants := make([]any, 0, len(kg.Participants))
	for _, p := range kg.Participants {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = Slugify(p.Name)
		}
		participants = append(participants, map[string]any{
			"id":           id,
			"name":         p.Name,
			"role":         p.Role,
			"organization": p.Organization,
		})
	}
	if len(participants) > 0 {
		stmts = append(stmts, statement{
			op: "write participants",
			cypher: `
		MATCH (m:Meeting {id: $meeting_id})
		UNWIND $participants AS p
		CREATE (node:Participant {meeting_id: $meeting_id, participant_id: p.id, name: p.name, role: p.role, organization: p.organization})
		CREATE (m)-[:HAS_PARTICIPANT]->(node)`,
			params: map[string]any{"participants": participants, "meeting_id": snapshot.ID},
		})
	}

	decisions := make([]any, 0, len(kg.Decisions))
	for _, d := range kg.Decisions {
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		id := strings.TrimSpace(d.ID)
		if id == "" {
			id = Slugify(d.Title)
		}
		decisions = append(decisions, map[string]any{
			"id":          id,
			"title":       d.Title,
			"description": d.Description,
			"owner":       d.Owner,
			"due_date":    d.DueDate,
		})
	}
	if len(decisions) > 0 {
		stmts = append(stmts, statement{
			op: "write decisions",
			cypher: `
		MATCH (m:Meeting {id: $meeting_id})
		UNWIND $decisions AS d
		CREATE (node:Decision {meeting_id: $meeting_id, decision_id: d.id, title: d.title, description: d.description, owner: d.owner, due_date: d.due_date})
		CREATE (m)-[:HAS_DECISION]->(node)`,
			params: map[string]any{"decisions": decisions, "meeting_id": snapshot.ID},
		})
	}

	events := make([]any, 0, len(kg.Timeline))
	for _, e := range kg.Timeline {
		if strings.TrimSpace(e.Label) == "" {
			continue
		}
		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = Slugify(e.Label)
		}
		events = append(events, map[string]any{
			"id":         id,
			"label":      e.Label,
			"summary":    e.Summary,
			"start_time": e.StartTime,
		})
	}
	if len(events) > 0 {
		stmts = append(stmts, statement{
			op: "write timeline",
			cypher: `
		MATCH (m:Meeting {id: $meeting_id})
		UNWIND $events AS e
		CREATE (node:TimelineEvent {meeting_id: $meeting_id, event_id: e.id, label: e.label, summary: e.summary, start_time: e.start_time})
		CREATE (m)-[:HAS_TIMELINE]->(node)`,
			params: map[string]any{"events": events, "meeting_id": snapshot.ID},
		})
	}

	if len(keyPoints) > 0 {
		stmts = append(stmts, statement{
			op:     "write key points",
			cypher: insightCollectionCypher,
			params: map[string]any{
				"meeting_id":      snapshot.ID,
				"collection_type": "KEY_POINTS",
				"item_type":       "KEY_POINT",
				"items":           itemsToParams(keyPoints),
			},
		})
	}

	if len(actionItems) > 0 {
		stmts = append(stmts, statement{
			op:     "write action items",
			cypher: insightCollectionCypher,
			params: map[string]any{
				"meeting_id":      snapshot.ID,
				"collection_type": "ACTION_ITEMS",
				"item_type":       "ACTION_ITEM",
				"items":           itemsToParams(actionItems),
			},
		})
	}

	nodes := make([]any, 0, len(kg.Nodes))
	for _, n := range kg.Nodes {
		id := strings.TrimSpace(n.ID)
		label := strings.TrimSpace(n.Label)
		if id == "" {
			id = Slugify(label)
		}
		if label == "" {
			label = id
		}
		if id == "" {
			continue
		}
		nodes = append(nodes, map[string]any{"id": id, "label": label, "type": n.Type})
	}
	if len(nodes) > 0 {
		stmts = append(stmts, statement{
			op: "write concepts",
			cypher: `
		UNWIND $nodes AS node
		MERGE (c:Concept {meeting_id: $meeting_id, node_id: node.id})
		SET c.label = node.label, c.type = node.type
		MERGE (m:Meeting {id: $meeting_id})
		MERGE (m)-[:MENTIONS]->(c)`,
			params: map[string]any{"nodes": nodes, "meeting_id": snapshot.ID},
		})
	}

	edges := make([]any, 0, len(kg.Edges))
	for _, e := range kg.Edges {
		from := strings.TrimSpace(e.From)
		to := strings.TrimSpace(e.To)
		if from == "" || to == "" {
			continue
		}
		label := e.Label
		if label == "" {
			label = "related"
		}
		edges = append(edges, map[string]any{"from": from, "to": to, "label": label})
	}
	if len(edges) > 0 {
		stmts = append(stmts, statement{
			op: "write concept relations",
			cypher: `
		UNWIND $edges AS edge
		MATCH (source:Concept {meeting_id: $meeting_id, node_id: edge.from})
		MATCH (target:Concept {meeting_id: $meeting_id, node_id: edge.to})
		MERGE (source)-[r:RELATED_TO {meeting_id: $meeting_id}]->(target)
		SET r.label = edge.label`,
			params: map[string]any{"edges": edges, "meeting_id": snapshot.ID},
		})
	}

	return stmts
}

const insightCollectionCypher = `
	MATCH (m:Meeting {id: $meeting_id})
	MERGE (c:InsightCollection {meeting_id: $meeting_id, type: $collection_type})
	MERGE (m)-[:HAS_INSIGHTS]->(c)
	WITH c, $items AS items
	FOREACH (item IN items |
		MERGE (i:Insight {meeting_id: $meeting_id, type: $item_type, title: item.title})
		SET i.details = item.details
		MERGE (c)-[:INCLUDES]->(i)
	)`

// Search scans summaries, tag text and transcripts for a case-insensitive
// substring match, newest meetings first. Relevance decays with rank.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]entities.SearchHit, error) {
	session, err := s.conn.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	cypher := `
	MATCH (m:Meeting)
	WHERE
		toLower(coalesce(m.summary, '')) CONTAINS $query
		OR toLower(coalesce(m.tags_text, '')) CONTAINS $query
		OR toLower(coalesce(m.transcript, '')) CONTAINS $query
	RETURN m.id AS id,
		   m.title AS title,
		   m.summary AS summary,
		   m.created_at AS created_at,
		   m.tags_text AS tags_text,
		   m.original_filename AS original_filename
	ORDER BY m.created_at DESC
	LIMIT $limit`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{
			"query": strings.ToLower(query),
			"limit": limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("graph search failed: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	hits := make([]entities.SearchHit, 0, len(records))
	for i, record := range records {
		title := recordString(record, "title")
		if title == "" {
			title = recordString(record, "original_filename")
		}
		hits = append(hits, entities.SearchHit{
			MeetingID: recordString(record, "id"),
			Title:     title,
			Content:   recordString(record, "summary"),
			CreatedAt: recordString(record, "created_at"),
			Tags:      recordString(record, "tags_text"),
			Relevance: 1.0 / float64(1+i),
		})
	}
	return hits, nil
}

// FetchContext assembles a meeting's scalar fields and every related
// collection in one read. Returns (nil, nil) when the meeting node does
// not exist, signalling the caller to upsert first.
func (s *Store) FetchContext(ctx context.Context, meetingID string) (*entities.MeetingContext, error) {
	session, err := s.conn.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	cypher := `
	MATCH (m:Meeting {id: $meeting_id})
	OPTIONAL MATCH (m)-[:HAS_TAG]->(t:Tag)
	OPTIONAL MATCH (m)-[:HAS_TOPIC]->(tp:Topic)
	OPTIONAL MATCH (m)-[:MENTIONS]->(c:Concept)
	OPTIONAL MATCH (m)-[:HAS_PARTICIPANT]->(p:Participant)
	OPTIONAL MATCH (m)-[:HAS_DECISION]->(d:Decision)
	OPTIONAL MATCH (m)-[:HAS_TIMELINE]->(e:TimelineEvent)
	OPTIONAL MATCH (src:Concept {meeting_id: $meeting_id})-[rel:RELATED_TO {meeting_id: $meeting_id}]->(dst:Concept)
	OPTIONAL MATCH (m)-[:HAS_INSIGHTS]->(:InsightCollection {type: 'KEY_POINTS'})-[:INCLUDES]->(kp:Insight)
	OPTIONAL MATCH (m)-[:HAS_INSIGHTS]->(:InsightCollection {type: 'ACTION_ITEMS'})-[:INCLUDES]->(ai:Insight)
	RETURN
		m,
		collect(DISTINCT t.name) AS tags,
		collect(DISTINCT tp.name) AS topics,
		collect(DISTINCT {id: c.node_id, label: c.label, type: c.type}) AS concepts,
		collect(DISTINCT {id: p.participant_id, name: p.name, role: p.role, organization: p.organization}) AS participants,
		collect(DISTINCT {id: d.decision_id, title: d.title, description: d.description, owner: d.owner, due_date: d.due_date}) AS decisions,
		collect(DISTINCT {id: e.event_id, label: e.label, summary: e.summary, start_time: e.start_time}) AS timeline,
		collect(DISTINCT {from: src.node_id, to: dst.node_id, label: rel.label}) AS relations,
		collect(DISTINCT {title: kp.title, details: kp.details}) AS key_points,
		collect(DISTINCT {title: ai.title, details: ai.details}) AS action_items`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"meeting_id": meetingID})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			// No row means the meeting node does not exist yet
			return nil, nil
		}
		return record, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meeting context: %w", err)
	}
	record, ok := result.(*neo4j.Record)
	if !ok || record == nil {
		return nil, nil
	}

	rawNode, found := record.Get("m")
	node, isNode := rawNode.(neo4j.Node)
	if !found || !isNode {
		return nil, nil
	}
	props := node.Props

	mc := &entities.MeetingContext{
		MeetingID:    meetingID,
		Title:        propString(props, "title"),
		CreatedAt:    propString(props, "created_at"),
		Summary:      propString(props, "summary"),
		Sentiment:    propString(props, "sentiment"),
		Tags:         recordStringList(record, "tags"),
		Topics:       recordStringList(record, "topics"),
		KeyPoints:    recordItems(record, "key_points"),
		ActionItems:  recordItems(record, "action_items"),
		Participants: []entities.Participant{},
		Decisions:    []entities.Decision{},
		Timeline:     []entities.TimelineEvent{},
		Concepts:     []entities.GraphNode{},
		Relations:    []entities.GraphEdge{},
		FromGraph:    true,
	}
	if mc.Title == "" {
		mc.Title = propString(props, "original_filename")
	}

	for _, m := range recordMapList(record, "participants") {
		if name := mapString(m, "name"); name != "" {
			mc.Participants = append(mc.Participants, entities.Participant{
				ID:           mapString(m, "id"),
				Name:         name,
				Role:         mapString(m, "role"),
				Organization: mapString(m, "organization"),
			})
		}
	}
	for _, m := range recordMapList(record, "decisions") {
		if title := mapString(m, "title"); title != "" {
			mc.Decisions = append(mc.Decisions, entities.Decision{
				ID:          mapString(m, "id"),
				Title:       title,
				Description: mapString(m, "description"),
				Owner:       mapString(m, "owner"),
				DueDate:     mapString(m, "due_date"),
			})
		}
	}
	for _, m := range recordMapList(record, "timeline") {
		if label := mapString(m, "label"); label != "" {
			mc.Timeline = append(mc.Timeline, entities.TimelineEvent{
				ID:        mapString(m, "id"),
				Label:     label,
				Summary:   mapString(m, "summary"),
				StartTime: mapString(m, "start_time"),
			})
		}
	}
	for _, m := range recordMapList(record, "concepts") {
		if id := mapString(m, "id"); id != "" {
			mc.Concepts = append(mc.Concepts, entities.GraphNode{ID: id, Label: mapString(m, "label"), Type: mapString(m, "type")})
		}
	}
	for _, m := range recordMapList(record, "relations") {
		from, to := mapString(m, "from"), mapString(m, "to")
		if from != "" && to != "" {
			mc.Relations = append(mc.Relations, entities.GraphEdge{From: from, To: to, Label: mapString(m, "label")})
		}
	}

	return mc, nil
}

// record/property helpers

func titledOnly(items []entities.StructuredItem) []entities.StructuredItem {
	out := make([]entities.StructuredItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Title) != "" {
			out = append(out, item)
		}
	}
	return out
}

func itemsToParams(items []entities.StructuredItem) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"title":   item.Title,
			"details": strings.Join(item.Details, "\n"),
		})
	}
	return out
}

func toAnySlice(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}

func recordString(record *neo4j.Record, key string) string {
	raw, ok := record.Get(key)
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func recordStringList(record *neo4j.Record, key string) []string {
	out := []string{}
	raw, ok := record.Get(key)
	if !ok {
		return out
	}
	list, ok := raw.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func recordMapList(record *neo4j.Record, key string) []map[string]any {
	out := []map[string]any{}
	raw, ok := record.Get(key)
	if !ok {
		return out
	}
	list, ok := raw.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func recordItems(record *neo4j.Record, key string) []entities.StructuredItem {
	items := []entities.StructuredItem{}
	for _, m := range recordMapList(record, key) {
		title := mapString(m, "title")
		if title == "" {
			continue
		}
		details := []string{}
		for _, line := range strings.Split(mapString(m, "details"), "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				details = append(details, trimmed)
			}
		}
		items = append(items, entities.StructuredItem{Title: title, Details: details})
	}
	return items
}

func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func mapString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
