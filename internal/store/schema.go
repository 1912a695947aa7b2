package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS readings (
    reading_id           TEXT PRIMARY KEY,
    vin                  TEXT NOT NULL,
    odometer             REAL NOT NULL,
    source               TEXT NOT NULL,
    fetched_at           TEXT NOT NULL,
    fetched_at_ns        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_readings_vin_time ON readings(vin, fetched_at_ns);
`
