package database

// schema holds the statements run by Migrate for each dialect. Prices are
// kept as exact decimal text in sqlite and NUMERIC in postgres.
var schema = map[string][]string{
	DBSQLite3: {
		`CREATE TABLE IF NOT EXISTS candle (
		id text NOT NULL PRIMARY KEY,
		symbol text NOT NULL,
		interval_seconds integer NOT NULL,
		bar_time text NOT NULL,
		open text NOT NULL,
		high text NOT NULL,
		low text NOT NULL,
		close text NOT NULL,
		volume text NOT NULL,
		UNIQUE(symbol, interval_seconds, bar_time)
	);`,
	},
	DBPostgreSQL: {
		`CREATE TABLE IF NOT EXISTS candle (
		id uuid PRIMARY KEY NOT NULL,
		symbol varchar(64) NOT NULL,
		interval_seconds bigint NOT NULL,
		bar_time TIMESTAMPTZ NOT NULL,
		open NUMERIC NOT NULL,
		high NUMERIC NOT NULL,
		low NUMERIC NOT NULL,
		close NUMERIC NOT NULL,
		volume NUMERIC NOT NULL,
		CONSTRAINT candle_symbol_interval_time UNIQUE (symbol, interval_seconds, bar_time)
	);`,
	},
}
