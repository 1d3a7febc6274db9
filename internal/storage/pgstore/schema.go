package pgstore

var schema = []string{
	`CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		theme TEXT NOT NULL DEFAULT 'dark',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS trait_progress (
		user_id TEXT NOT NULL,
		profile_id TEXT NOT NULL,
		section TEXT NOT NULL,
		item TEXT NOT NULL,
		trait TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (profile_id, section, item, trait)
	);`,
	`CREATE TABLE IF NOT EXISTS item_notes (
		user_id TEXT NOT NULL,
		profile_id TEXT NOT NULL,
		section TEXT NOT NULL,
		item TEXT NOT NULL,
		note TEXT NOT NULL,
		PRIMARY KEY (profile_id, section, item)
	);`,
	`CREATE TABLE IF NOT EXISTS bank_status (
		user_id TEXT NOT NULL,
		profile_id TEXT NOT NULL,
		section TEXT NOT NULL,
		item TEXT NOT NULL,
		in_bank BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (profile_id, section, item)
	);`,
	`CREATE TABLE IF NOT EXISTS research_timers (
		user_id TEXT NOT NULL,
		profile_id TEXT NOT NULL,
		section TEXT NOT NULL,
		item TEXT NOT NULL,
		trait TEXT NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (profile_id, section, item, trait)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_characters_user_id ON characters(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_trait_progress_user_id ON trait_progress(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_item_notes_user_id ON item_notes(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_bank_status_user_id ON bank_status(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_research_timers_user_id ON research_timers(user_id);`,
}
