package warehouse

const schemaSQL = `
CREATE TABLE IF NOT EXISTS financial_facts (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    source      TEXT NOT NULL,
    scenario    TEXT NOT NULL,
    period      TEXT NOT NULL,
    department  TEXT NOT NULL,
    account     TEXT NOT NULL,
    value       REAL NOT NULL,
    currency    TEXT NOT NULL DEFAULT 'USD',
    metadata    TEXT
);

CREATE INDEX IF NOT EXISTS idx_facts_scenario ON financial_facts(scenario);
CREATE INDEX IF NOT EXISTS idx_facts_scenario_source ON financial_facts(scenario, source);
CREATE INDEX IF NOT EXISTS idx_facts_period ON financial_facts(period);
CREATE INDEX IF NOT EXISTS idx_facts_department ON financial_facts(department);

CREATE TABLE IF NOT EXISTS ai_insights (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    actual      TEXT NOT NULL,
    budget      TEXT NOT NULL,
    prompt      TEXT,
    insights    TEXT NOT NULL,
    row_count   INTEGER NOT NULL,
    created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`
