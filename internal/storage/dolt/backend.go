//go:build cgo

// Package dolt implements storage.Storage on top of an embedded Dolt SQL
// engine (github.com/dolthub/driver), grounded on the teacher's
// internal/storage/dolt/store_embedded.go. Unlike that file, which opens a
// connector for exactly one function call (a "unit of work"), a generation
// run needs many reads followed by one durable write, so Backend keeps the
// connector open for its whole lifetime instead of per-call.
package dolt

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	embedded "github.com/dolthub/driver"

	"github.com/commanderspellbook/variantengine/internal/model"
	"github.com/commanderspellbook/variantengine/internal/storage"
)

const embeddedOpenMaxElapsed = 30 * time.Second

// newEmbeddedOpenBackoff builds a fresh exponential backoff for opening the
// embedded connector, same shape and cap the teacher uses for this driver.
// BackOff implementations are stateful, so callers must not share one
// instance across opens.
func newEmbeddedOpenBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = embeddedOpenMaxElapsed
	return bo
}

// Backend is a long-lived handle onto one embedded Dolt database.
type Backend struct {
	connector *embedded.Connector
	db        *sql.DB
}

// Open parses dsn, establishes the embedded connector and applies the
// schema. The lifecycle mirrors the teacher's withEmbeddedDolt: ParseDSN,
// set BackOff, NewConnector, sql.OpenDB, PingContext to force the engine
// open before use.
func Open(ctx context.Context, dsn string) (*Backend, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := embedded.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.BackOff = newEmbeddedOpenBackoff()
	connector, err := embedded.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Backend{connector: connector, db: db}, nil
}

func ignoreContextCanceled(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the database handle and the underlying filesystem lock,
// same two-step order as the teacher's withEmbeddedDolt cleanup.
func (b *Backend) Close() error {
	return errors.Join(
		ignoreContextCanceled(b.db.Close()),
		ignoreContextCanceled(b.connector.Close()),
	)
}

func (b *Backend) AllCards(ctx context.Context) ([]*model.Card, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT id, name, identity, legal FROM cards ORDER BY id`)
	if err != nil {
		return nil, wrapQuery("AllCards", err)
	}
	defer rows.Close()
	cardsByID := map[model.CardID]*model.Card{}
	var order []model.CardID
	for rows.Next() {
		c := &model.Card{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Identity, &c.Legal); err != nil {
			return nil, wrapQuery("AllCards.scan", err)
		}
		cardsByID[c.ID] = c
		order = append(order, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQuery("AllCards.rows", err)
	}
	if err := attachCardFeatures(ctx, b.db, cardsByID); err != nil {
		return nil, err
	}
	out := make([]*model.Card, len(order))
	for i, id := range order {
		out[i] = cardsByID[id]
	}
	return out, nil
}

func attachCardFeatures(ctx context.Context, db *sql.DB, cardsByID map[model.CardID]*model.Card) error {
	rows, err := db.QueryContext(ctx, `SELECT card_id, feature_id FROM card_features`)
	if err != nil {
		return wrapQuery("attachCardFeatures", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cardID model.CardID
		var featureID model.FeatureID
		if err := rows.Scan(&cardID, &featureID); err != nil {
			return wrapQuery("attachCardFeatures.scan", err)
		}
		if c, ok := cardsByID[cardID]; ok {
			c.Features = append(c.Features, featureID)
		}
	}
	return wrapQuery("attachCardFeatures.rows", rows.Err())
}

func (b *Backend) AllTemplates(ctx context.Context) ([]*model.Template, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT id, name, query FROM templates ORDER BY id`)
	if err != nil {
		return nil, wrapQuery("AllTemplates", err)
	}
	defer rows.Close()
	var out []*model.Template
	for rows.Next() {
		t := &model.Template{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Query); err != nil {
			return nil, wrapQuery("AllTemplates.scan", err)
		}
		out = append(out, t)
	}
	return out, wrapQuery("AllTemplates.rows", rows.Err())
}

func (b *Backend) AllFeatures(ctx context.Context) ([]*model.Feature, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT id, name, utility FROM features ORDER BY id`)
	if err != nil {
		return nil, wrapQuery("AllFeatures", err)
	}
	defer rows.Close()
	var out []*model.Feature
	for rows.Next() {
		f := &model.Feature{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Utility); err != nil {
			return nil, wrapQuery("AllFeatures.scan", err)
		}
		out = append(out, f)
	}
	return out, wrapQuery("AllFeatures.rows", rows.Err())
}

func (b *Backend) AllCombos(ctx context.Context) ([]*model.Combo, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT id, generator, zone_locations, cards_state, other_prerequisites, mana_needed, description
		FROM combos ORDER BY id`)
	if err != nil {
		return nil, wrapQuery("AllCombos", err)
	}
	defer rows.Close()
	byID := map[model.ComboID]*model.Combo{}
	var order []model.ComboID
	for rows.Next() {
		c := &model.Combo{}
		if err := rows.Scan(&c.ID, &c.Generator, &c.ZoneLocations, &c.CardsState, &c.OtherPrerequisites, &c.ManaNeeded, &c.Description); err != nil {
			return nil, wrapQuery("AllCombos.scan", err)
		}
		byID[c.ID] = c
		order = append(order, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQuery("AllCombos.rows", err)
	}
	for _, edge := range []struct {
		table string
		apply func(*model.Combo, int64)
	}{
		{"combo_uses", func(c *model.Combo, id int64) { c.Uses = append(c.Uses, model.CardID(id)) }},
		{"combo_requires", func(c *model.Combo, id int64) { c.Requires = append(c.Requires, model.TemplateID(id)) }},
		{"combo_needs", func(c *model.Combo, id int64) { c.Needs = append(c.Needs, model.FeatureID(id)) }},
		{"combo_produces", func(c *model.Combo, id int64) { c.Produces = append(c.Produces, model.FeatureID(id)) }},
		{"combo_removes", func(c *model.Combo, id int64) { c.Removes = append(c.Removes, model.FeatureID(id)) }},
	} {
		if err := attachComboEdge(ctx, b.db, edge.table, byID, edge.apply); err != nil {
			return nil, err
		}
	}
	out := make([]*model.Combo, len(order))
	for i, id := range order {
		out[i] = byID[id]
	}
	return out, nil
}

func attachComboEdge(ctx context.Context, db *sql.DB, table string, byID map[model.ComboID]*model.Combo, apply func(*model.Combo, int64)) error {
	rows, err := db.QueryContext(ctx, `SELECT combo_id, `+edgeColumn(table)+` FROM `+table)
	if err != nil {
		return wrapQuery("attachComboEdge:"+table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var comboID model.ComboID
		var edgeID int64
		if err := rows.Scan(&comboID, &edgeID); err != nil {
			return wrapQuery("attachComboEdge.scan:"+table, err)
		}
		if c, ok := byID[comboID]; ok {
			apply(c, edgeID)
		}
	}
	return wrapQuery("attachComboEdge.rows:"+table, rows.Err())
}

func edgeColumn(table string) string {
	switch table {
	case "combo_uses":
		return "card_id"
	case "combo_requires":
		return "template_id"
	default:
		return "feature_id"
	}
}

func (b *Backend) NotWorkingCardSets(ctx context.Context) ([]map[model.CardID]bool, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT unique_id FROM variants WHERE status = 'NOT_WORKING'`)
	if err != nil {
		return nil, wrapQuery("NotWorkingCardSets", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, wrapQuery("NotWorkingCardSets.scan", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapQuery("NotWorkingCardSets.rows", err)
	}

	var out []map[model.CardID]bool
	for _, id := range ids {
		cardRows, err := b.db.QueryContext(ctx, `SELECT card_id FROM variant_cards WHERE unique_id = ?`, id)
		if err != nil {
			return nil, wrapQuery("NotWorkingCardSets.cards", err)
		}
		set := map[model.CardID]bool{}
		for cardRows.Next() {
			var cardID model.CardID
			if err := cardRows.Scan(&cardID); err != nil {
				cardRows.Close()
				return nil, wrapQuery("NotWorkingCardSets.cards.scan", err)
			}
			set[cardID] = true
		}
		cardRows.Close()
		out = append(out, set)
	}
	return out, nil
}

func (b *Backend) ExistingVariants(ctx context.Context) (map[string]*model.Variant, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT unique_id, identity, legal, status, zone_locations, cards_state, other_prerequisites, mana_needed, description
		FROM variants`)
	if err != nil {
		return nil, wrapQuery("ExistingVariants", err)
	}
	defer rows.Close()
	out := map[string]*model.Variant{}
	for rows.Next() {
		v := &model.Variant{}
		var status string
		if err := rows.Scan(&v.UniqueID, &v.Identity, &v.Legal, &status, &v.ZoneLocations, &v.CardsState, &v.OtherPrerequisites, &v.ManaNeeded, &v.Description); err != nil {
			return nil, wrapQuery("ExistingVariants.scan", err)
		}
		v.Status = model.Status(status)
		out[v.UniqueID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQuery("ExistingVariants.rows", err)
	}
	for id, v := range out {
		cards, templates, produces, of, includes, err := loadVariantEdges(ctx, b.db, id)
		if err != nil {
			return nil, err
		}
		v.Cards, v.Templates, v.Produces, v.Of, v.Includes = cards, templates, produces, of, includes
	}
	return out, nil
}

func loadVariantEdges(ctx context.Context, db *sql.DB, uniqueID string) (
	cards []model.CardID, templates []model.TemplateID,
	produces map[model.FeatureID]bool, of, includes map[model.ComboID]bool, err error,
) {
	cardRows, err := db.QueryContext(ctx, `SELECT card_id FROM variant_cards WHERE unique_id = ? ORDER BY ord`, uniqueID)
	if err != nil {
		return nil, nil, nil, nil, nil, wrapQuery("loadVariantEdges.cards", err)
	}
	for cardRows.Next() {
		var id model.CardID
		if err := cardRows.Scan(&id); err != nil {
			cardRows.Close()
			return nil, nil, nil, nil, nil, wrapQuery("loadVariantEdges.cards.scan", err)
		}
		cards = append(cards, id)
	}
	cardRows.Close()

	templateRows, err := db.QueryContext(ctx, `SELECT template_id FROM variant_templates WHERE unique_id = ?`, uniqueID)
	if err != nil {
		return nil, nil, nil, nil, nil, wrapQuery("loadVariantEdges.templates", err)
	}
	for templateRows.Next() {
		var id model.TemplateID
		if err := templateRows.Scan(&id); err != nil {
			templateRows.Close()
			return nil, nil, nil, nil, nil, wrapQuery("loadVariantEdges.templates.scan", err)
		}
		templates = append(templates, id)
	}
	templateRows.Close()

	produces = map[model.FeatureID]bool{}
	if err := scanIDSet(ctx, db, "SELECT feature_id FROM variant_produces WHERE unique_id = ?", uniqueID, func(id int64) {
		produces[model.FeatureID(id)] = true
	}); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	of = map[model.ComboID]bool{}
	if err := scanIDSet(ctx, db, "SELECT combo_id FROM variant_of WHERE unique_id = ?", uniqueID, func(id int64) {
		of[model.ComboID(id)] = true
	}); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	includes = map[model.ComboID]bool{}
	if err := scanIDSet(ctx, db, "SELECT combo_id FROM variant_includes WHERE unique_id = ?", uniqueID, func(id int64) {
		includes[model.ComboID(id)] = true
	}); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return cards, templates, produces, of, includes, nil
}

func scanIDSet(ctx context.Context, db *sql.DB, query, uniqueID string, apply func(int64)) error {
	rows, err := db.QueryContext(ctx, query, uniqueID)
	if err != nil {
		return wrapQuery("scanIDSet", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return wrapQuery("scanIDSet.scan", err)
		}
		apply(id)
	}
	return wrapQuery("scanIDSet.rows", rows.Err())
}

// CommitVariants writes the reconciler's output as one transaction: every
// variant is replaced wholesale (row plus edge tables), every deleted id is
// removed. A transaction boundary here is what spec §4.G's "one durable
// transaction" requirement maps to on a SQL backend.
func (b *Backend) CommitVariants(ctx context.Context, variants map[string]*model.Variant, deleteIDs []string) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapQuery("CommitVariants.begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, id := range deleteIDs {
		if err = deleteVariant(ctx, tx, id); err != nil {
			return err
		}
	}
	// Stable iteration keeps repeated commits of an unchanged catalog
	// byte-identical in the statements they issue, which matters for the
	// round-trip invariant tests (spec §8).
	ids := make([]string, 0, len(variants))
	for id := range variants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err = upsertVariant(ctx, tx, variants[id]); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return wrapQuery("CommitVariants.commit", err)
	}
	return nil
}

func deleteVariant(ctx context.Context, tx *sql.Tx, id string) error {
	for _, table := range []string{"variant_cards", "variant_templates", "variant_produces", "variant_of", "variant_includes", "variants"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE unique_id = ?`, id); err != nil {
			return wrapQuery("deleteVariant:"+table, err)
		}
	}
	return nil
}

func upsertVariant(ctx context.Context, tx *sql.Tx, v *model.Variant) error {
	if err := deleteVariant(ctx, tx, v.UniqueID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO variants (unique_id, identity, legal, status, zone_locations, cards_state, other_prerequisites, mana_needed, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.UniqueID, v.Identity, v.Legal, string(v.Status), v.ZoneLocations, v.CardsState, v.OtherPrerequisites, v.ManaNeeded, v.Description)
	if err != nil {
		return wrapQuery("upsertVariant.insert", err)
	}
	for i, cardID := range v.Cards {
		if _, err := tx.ExecContext(ctx, `INSERT INTO variant_cards (unique_id, ord, card_id) VALUES (?, ?, ?)`, v.UniqueID, i, cardID); err != nil {
			return wrapQuery("upsertVariant.cards", err)
		}
	}
	for _, templateID := range v.Templates {
		if _, err := tx.ExecContext(ctx, `INSERT INTO variant_templates (unique_id, template_id) VALUES (?, ?)`, v.UniqueID, templateID); err != nil {
			return wrapQuery("upsertVariant.templates", err)
		}
	}
	for featureID := range v.Produces {
		if _, err := tx.ExecContext(ctx, `INSERT INTO variant_produces (unique_id, feature_id) VALUES (?, ?)`, v.UniqueID, featureID); err != nil {
			return wrapQuery("upsertVariant.produces", err)
		}
	}
	for comboID := range v.Of {
		if _, err := tx.ExecContext(ctx, `INSERT INTO variant_of (unique_id, combo_id) VALUES (?, ?)`, v.UniqueID, comboID); err != nil {
			return wrapQuery("upsertVariant.of", err)
		}
	}
	for comboID := range v.Includes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO variant_includes (unique_id, combo_id) VALUES (?, ?)`, v.UniqueID, comboID); err != nil {
			return wrapQuery("upsertVariant.includes", err)
		}
	}
	return nil
}

// wrapQuery classifies a driver error against storage's shared sentinels
// (ErrNotFound, ErrPersistence) instead of joining a bare operation label,
// so callers can errors.Is against storage.ErrPersistence whichever
// backend produced the error.
func wrapQuery(op string, err error) error {
	return storage.WrapDBError(op, err)
}
