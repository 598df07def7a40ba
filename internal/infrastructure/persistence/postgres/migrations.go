package postgres

// GetMigrations returns all schema migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create institutions and courses tables",
			Up: `
				CREATE TABLE IF NOT EXISTS institutions (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS courses (
					id TEXT PRIMARY KEY,
					institution_id TEXT NOT NULL REFERENCES institutions(id),
					name TEXT NOT NULL,
					code TEXT NOT NULL DEFAULT '',
					faculty_name TEXT NOT NULL DEFAULT '',
					requirements TEXT NOT NULL DEFAULT '',
					capacity INTEGER NOT NULL DEFAULT 0,
					duration_years INTEGER NOT NULL DEFAULT 0,
					status TEXT NOT NULL DEFAULT 'active'
						CHECK (status IN ('active', 'inactive')),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_courses_institution
					ON courses(institution_id);
				CREATE INDEX IF NOT EXISTS idx_courses_status
					ON courses(status);
			`,
			Down: `
				DROP TABLE IF EXISTS courses;
				DROP TABLE IF EXISTS institutions;
			`,
		},
		{
			Version:     2,
			Description: "create applications table",
			Up: `
				CREATE TABLE IF NOT EXISTS applications (
					id UUID PRIMARY KEY,
					student_id TEXT NOT NULL,
					institution_id TEXT NOT NULL REFERENCES institutions(id),
					course_id TEXT NOT NULL REFERENCES courses(id),
					status TEXT NOT NULL DEFAULT 'pending'
						CHECK (status IN ('pending', 'admitted', 'accepted', 'declined', 'rejected')),
					applied_at TIMESTAMPTZ NOT NULL,
					reviewed_at TIMESTAMPTZ,
					accepted_at TIMESTAMPTZ,
					declined_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				-- One application per student per course.
				CREATE UNIQUE INDEX IF NOT EXISTS uq_applications_student_course
					ON applications(student_id, institution_id, course_id);

				-- At most one accepted offer per student, enforced at the
				-- store level in addition to the reconciliation transaction.
				CREATE UNIQUE INDEX IF NOT EXISTS uq_applications_one_accepted
					ON applications(student_id) WHERE status = 'accepted';

				CREATE INDEX IF NOT EXISTS idx_applications_student
					ON applications(student_id, applied_at DESC);
				CREATE INDEX IF NOT EXISTS idx_applications_institution
					ON applications(institution_id, status);
			`,
			Down: `
				DROP TABLE IF EXISTS applications;
			`,
		},
		{
			Version:     3,
			Description: "create documents table",
			Up: `
				CREATE TABLE IF NOT EXISTS documents (
					id UUID PRIMARY KEY,
					student_id TEXT NOT NULL,
					doc_type TEXT NOT NULL,
					file_name TEXT NOT NULL,
					file_size BIGINT NOT NULL DEFAULT 0,
					storage_ref TEXT NOT NULL,
					review_status TEXT NOT NULL DEFAULT 'pending'
						CHECK (review_status IN ('pending', 'approved', 'rejected')),
					uploaded_at TIMESTAMPTZ NOT NULL,
					reviewed_at TIMESTAMPTZ
				);

				CREATE INDEX IF NOT EXISTS idx_documents_student
					ON documents(student_id, uploaded_at DESC);
			`,
			Down: `
				DROP TABLE IF EXISTS documents;
			`,
		},
		{
			Version:     4,
			Description: "create notifications table",
			Up: `
				CREATE TABLE IF NOT EXISTS notifications (
					id UUID PRIMARY KEY,
					user_id TEXT NOT NULL,
					message TEXT NOT NULL,
					read BOOLEAN NOT NULL DEFAULT FALSE,
					read_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_notifications_user
					ON notifications(user_id, created_at DESC);
				CREATE INDEX IF NOT EXISTS idx_notifications_unread
					ON notifications(user_id) WHERE read = FALSE;
			`,
			Down: `
				DROP TABLE IF EXISTS notifications;
			`,
		},
	}
}
