package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS task_documents (
    id INTEGER PRIMARY KEY,
    statement_text TEXT NOT NULL,
    topic TEXT NOT NULL,
    subtopic TEXT NOT NULL DEFAULT '',
    difficulty INTEGER NOT NULL,
    tags TEXT NOT NULL DEFAULT '',
    skills TEXT NOT NULL DEFAULT '',
    fingerprint TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_task_documents_topic ON task_documents(topic, difficulty);

CREATE VIRTUAL TABLE IF NOT EXISTS task_documents_fts USING fts5(
    statement_text, topic, subtopic, tags, skills,
    content='task_documents', content_rowid='id',
    tokenize='unicode61 remove_diacritics 2'
);

CREATE TRIGGER IF NOT EXISTS task_documents_ai AFTER INSERT ON task_documents BEGIN
    INSERT INTO task_documents_fts(rowid, statement_text, topic, subtopic, tags, skills)
    VALUES (new.id, new.statement_text, new.topic, new.subtopic, new.tags, new.skills);
END;
CREATE TRIGGER IF NOT EXISTS task_documents_ad AFTER DELETE ON task_documents BEGIN
    INSERT INTO task_documents_fts(task_documents_fts, rowid, statement_text, topic, subtopic, tags, skills)
    VALUES ('delete', old.id, old.statement_text, old.topic, old.subtopic, old.tags, old.skills);
END;
CREATE TRIGGER IF NOT EXISTS task_documents_au AFTER UPDATE ON task_documents BEGIN
    INSERT INTO task_documents_fts(task_documents_fts, rowid, statement_text, topic, subtopic, tags, skills)
    VALUES ('delete', old.id, old.statement_text, old.topic, old.subtopic, old.tags, old.skills);
    INSERT INTO task_documents_fts(rowid, statement_text, topic, subtopic, tags, skills)
    VALUES (new.id, new.statement_text, new.topic, new.subtopic, new.tags, new.skills);
END;
`
