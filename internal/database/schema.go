package database

// schemaSQL defines the whole relational surface. Every statement is
// idempotent (IF NOT EXISTS), so applying it on each startup is safe and
// never touches existing data.
const schemaSQL = `
-- ========================================================
-- 1. CATALOG
-- ========================================================

CREATE TABLE IF NOT EXISTS books (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    language TEXT NOT NULL DEFAULT '',
    version REAL NOT NULL DEFAULT 0,
    annotation TEXT NOT NULL DEFAULT '',
    book_date DATETIME,
    document_date DATETIME,
    document_size INTEGER NOT NULL DEFAULT 0,
    added_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_download_date DATETIME,
    content_hash TEXT NOT NULL DEFAULT '',       -- document-declared id, not a real hash
    document_id_trusted INTEGER NOT NULL DEFAULT 0,
    duplicate_key TEXT NOT NULL DEFAULT '',
    replaced_by_id TEXT NOT NULL DEFAULT ''      -- '' = active, else id of the superseding book
);

CREATE TABLE IF NOT EXISTS authors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS translators (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS sequences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

-- Genre rows are referenced from book_genres by tag value, which is why the
-- taxonomy merge is additive-only.
CREATE TABLE IF NOT EXISTS genres (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tag TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    translation TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT ''
);

-- ========================================================
-- 2. RELATIONSHIPS
-- ========================================================

CREATE TABLE IF NOT EXISTS book_authors (
    book_id TEXT NOT NULL,
    author_id INTEGER NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (book_id, author_id),
    FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE,
    FOREIGN KEY(author_id) REFERENCES authors(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS book_translators (
    book_id TEXT NOT NULL,
    translator_id INTEGER NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (book_id, translator_id),
    FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE,
    FOREIGN KEY(translator_id) REFERENCES translators(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS book_genres (
    book_id TEXT NOT NULL,
    genre_tag TEXT NOT NULL,
    PRIMARY KEY (book_id, genre_tag),
    FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS book_sequences (
    book_id TEXT NOT NULL,
    sequence_id INTEGER NOT NULL,
    seq_number INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (book_id, sequence_id),
    FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE,
    FOREIGN KEY(sequence_id) REFERENCES sequences(id) ON DELETE CASCADE
);

-- ========================================================
-- 3. HISTORY & STATISTICS
-- ========================================================

CREATE TABLE IF NOT EXISTS downloads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id TEXT NOT NULL,
    ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    download_type TEXT NOT NULL DEFAULT 'download',
    format TEXT NOT NULL DEFAULT '',
    client_info TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS library_stats (
    key TEXT PRIMARY KEY,
    value INTEGER NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    period_days INTEGER NOT NULL DEFAULT 0
);

-- ========================================================
-- 4. FULL-TEXT SHADOW TABLES
-- ========================================================

-- External-content FTS5 mirrors. The triggers below keep them in lockstep
-- with the primary tables inside the same transaction, so the search index
-- can never drift and no reindex pass exists.

CREATE VIRTUAL TABLE IF NOT EXISTS books_fts USING fts5(
    title,
    annotation,
    content='books',
    content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS books_ai AFTER INSERT ON books BEGIN
  INSERT INTO books_fts(rowid, title, annotation) VALUES (new.rowid, new.title, new.annotation);
END;
CREATE TRIGGER IF NOT EXISTS books_ad AFTER DELETE ON books BEGIN
  INSERT INTO books_fts(books_fts, rowid, title, annotation) VALUES('delete', old.rowid, old.title, old.annotation);
END;
CREATE TRIGGER IF NOT EXISTS books_au AFTER UPDATE ON books BEGIN
  INSERT INTO books_fts(books_fts, rowid, title, annotation) VALUES('delete', old.rowid, old.title, old.annotation);
  INSERT INTO books_fts(rowid, title, annotation) VALUES (new.rowid, new.title, new.annotation);
END;

CREATE VIRTUAL TABLE IF NOT EXISTS authors_fts USING fts5(
    name,
    content='authors',
    content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS authors_ai AFTER INSERT ON authors BEGIN
  INSERT INTO authors_fts(rowid, name) VALUES (new.id, new.name);
END;
CREATE TRIGGER IF NOT EXISTS authors_ad AFTER DELETE ON authors BEGIN
  INSERT INTO authors_fts(authors_fts, rowid, name) VALUES('delete', old.id, old.name);
END;
CREATE TRIGGER IF NOT EXISTS authors_au AFTER UPDATE ON authors BEGIN
  INSERT INTO authors_fts(authors_fts, rowid, name) VALUES('delete', old.id, old.name);
  INSERT INTO authors_fts(rowid, name) VALUES (new.id, new.name);
END;

CREATE VIRTUAL TABLE IF NOT EXISTS sequences_fts USING fts5(
    name,
    content='sequences',
    content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS sequences_ai AFTER INSERT ON sequences BEGIN
  INSERT INTO sequences_fts(rowid, name) VALUES (new.id, new.name);
END;
CREATE TRIGGER IF NOT EXISTS sequences_ad AFTER DELETE ON sequences BEGIN
  INSERT INTO sequences_fts(sequences_fts, rowid, name) VALUES('delete', old.id, old.name);
END;
CREATE TRIGGER IF NOT EXISTS sequences_au AFTER UPDATE ON sequences BEGIN
  INSERT INTO sequences_fts(sequences_fts, rowid, name) VALUES('delete', old.id, old.name);
  INSERT INTO sequences_fts(rowid, name) VALUES (new.id, new.name);
END;

-- ========================================================
-- 5. VIEWS
-- ========================================================

CREATE VIEW IF NOT EXISTS active_books AS
  SELECT * FROM books WHERE replaced_by_id = '';

CREATE VIEW IF NOT EXISTS stats_overview AS
  SELECT
    (SELECT COUNT(*) FROM books WHERE replaced_by_id = '') AS total_books,
    (SELECT COUNT(*) FROM authors) AS authors_count,
    (SELECT COUNT(*) FROM sequences) AS sequences_count,
    (SELECT COUNT(*) FROM genres WHERE tag NOT LIKE '@%') AS genres_count,
    (SELECT COUNT(*) FROM downloads) AS total_downloads,
    (SELECT COUNT(DISTINCT book_id) FROM downloads) AS unique_downloads;

-- ========================================================
-- 6. INDEXES
-- ========================================================

CREATE INDEX IF NOT EXISTS idx_books_content_hash ON books(content_hash);
CREATE INDEX IF NOT EXISTS idx_books_duplicate_key ON books(duplicate_key);
CREATE INDEX IF NOT EXISTS idx_books_replaced ON books(replaced_by_id);
CREATE INDEX IF NOT EXISTS idx_books_added ON books(added_date);
CREATE INDEX IF NOT EXISTS idx_book_authors_author ON book_authors(author_id);
CREATE INDEX IF NOT EXISTS idx_book_genres_tag ON book_genres(genre_tag);
CREATE INDEX IF NOT EXISTS idx_book_sequences_seq ON book_sequences(sequence_id);
CREATE INDEX IF NOT EXISTS idx_downloads_book ON downloads(book_id);
CREATE INDEX IF NOT EXISTS idx_downloads_ts ON downloads(ts);
`
