//go:build cgo

package dolt

// schema is applied once per database on open; CREATE TABLE IF NOT EXISTS
// keeps it idempotent across runs (spec's Non-goals explicitly exclude
// schema migrations, so there is deliberately no versioning here).
const schema = `
CREATE TABLE IF NOT EXISTS cards (
	id BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	identity TEXT NOT NULL,
	legal BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS templates (
	id BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	query TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS features (
	id BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	utility BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS card_features (
	card_id BIGINT NOT NULL,
	feature_id BIGINT NOT NULL,
	PRIMARY KEY (card_id, feature_id)
);
CREATE TABLE IF NOT EXISTS combos (
	id BIGINT PRIMARY KEY,
	generator BOOLEAN NOT NULL,
	zone_locations TEXT NOT NULL,
	cards_state TEXT NOT NULL,
	other_prerequisites TEXT NOT NULL,
	mana_needed TEXT NOT NULL,
	description TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS combo_uses (combo_id BIGINT NOT NULL, card_id BIGINT NOT NULL, PRIMARY KEY (combo_id, card_id));
CREATE TABLE IF NOT EXISTS combo_requires (combo_id BIGINT NOT NULL, template_id BIGINT NOT NULL, PRIMARY KEY (combo_id, template_id));
CREATE TABLE IF NOT EXISTS combo_needs (combo_id BIGINT NOT NULL, feature_id BIGINT NOT NULL, PRIMARY KEY (combo_id, feature_id));
CREATE TABLE IF NOT EXISTS combo_produces (combo_id BIGINT NOT NULL, feature_id BIGINT NOT NULL, PRIMARY KEY (combo_id, feature_id));
CREATE TABLE IF NOT EXISTS combo_removes (combo_id BIGINT NOT NULL, feature_id BIGINT NOT NULL, PRIMARY KEY (combo_id, feature_id));
CREATE TABLE IF NOT EXISTS variants (
	unique_id VARCHAR(64) PRIMARY KEY,
	identity TEXT NOT NULL,
	legal BOOLEAN NOT NULL,
	status TEXT NOT NULL,
	zone_locations TEXT NOT NULL,
	cards_state TEXT NOT NULL,
	other_prerequisites TEXT NOT NULL,
	mana_needed TEXT NOT NULL,
	description TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS variant_cards (unique_id VARCHAR(64) NOT NULL, ord INT NOT NULL, card_id BIGINT NOT NULL, PRIMARY KEY (unique_id, ord));
CREATE TABLE IF NOT EXISTS variant_templates (unique_id VARCHAR(64) NOT NULL, template_id BIGINT NOT NULL, PRIMARY KEY (unique_id, template_id));
CREATE TABLE IF NOT EXISTS variant_produces (unique_id VARCHAR(64) NOT NULL, feature_id BIGINT NOT NULL, PRIMARY KEY (unique_id, feature_id));
CREATE TABLE IF NOT EXISTS variant_of (unique_id VARCHAR(64) NOT NULL, combo_id BIGINT NOT NULL, PRIMARY KEY (unique_id, combo_id));
CREATE TABLE IF NOT EXISTS variant_includes (unique_id VARCHAR(64) NOT NULL, combo_id BIGINT NOT NULL, PRIMARY KEY (unique_id, combo_id));
CREATE TABLE IF NOT EXISTS jobs (
	id VARCHAR(64) PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL,
	lease_until BIGINT NOT NULL,
	started_by TEXT NOT NULL,
	message TEXT NOT NULL,
	started_at BIGINT NOT NULL,
	finished_at BIGINT NOT NULL
);
`
