package postgresql

import (
	"database/sql"
	"log/slog"

	"github.com/taskmill/taskmill/pkg/persistence/sqlbase"
)

func sqlbaseManager(logger *slog.Logger, db *sql.DB) *sqlbase.MigrationManager {
	return sqlbase.NewMigrationManager(logger, db, migrations())
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				owner TEXT NOT NULL DEFAULT '',
				max_retries INTEGER NOT NULL DEFAULT 0,
				execution_count BIGINT NOT NULL DEFAULT 0,
				triggers JSONB NOT NULL DEFAULT '[]',
				actions JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows(status) WHERE deleted_at IS NULL;

			CREATE TABLE IF NOT EXISTS workflow_executions (
				id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				trigger_id TEXT NOT NULL DEFAULT '',
				triggered_by TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				error TEXT NOT NULL DEFAULT '',
				context_snapshot JSONB NOT NULL DEFAULT '{}',
				results JSONB NOT NULL DEFAULT '[]',
				max_attempts INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				started_at TIMESTAMP WITH TIME ZONE,
				finished_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_executions_workflow ON workflow_executions(workflow_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_executions_status ON workflow_executions(status);

			CREATE TABLE IF NOT EXISTS tasks (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'todo',
				priority TEXT NOT NULL DEFAULT 'medium',
				assignee TEXT NOT NULL DEFAULT '',
				due_date TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date) WHERE due_date IS NOT NULL;

			CREATE TABLE IF NOT EXISTS notifications (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				type TEXT NOT NULL DEFAULT '',
				task_id TEXT NOT NULL DEFAULT '',
				read BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS comments (
				id TEXT PRIMARY KEY,
				task_id TEXT NOT NULL,
				author TEXT NOT NULL DEFAULT '',
				body TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);
		`,
	}
}
