package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	TableUsers           = "users"
	TableCategories      = "quiz_categories"
	TableQuestions       = "quiz_questions"
	TableSessions        = "quiz_sessions"
	TableAttempts        = "quiz_session_attempts"
	TableQuestionResults = "quiz_session_question_results"
	TableUsageRecords    = "usage_records"
)

// textSize forces a TEXT/LONGTEXT column instead of VARCHAR(255).
const textSize = 2147483647

var (
	usersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "display_name", Type: field.TypeString, Default: ""},
		{Name: "tier", Type: field.TypeString, Size: 16, Default: string(TierNone)},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	usersTable = &schema.Table{
		Name:       TableUsers,
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	categoriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sport", Type: field.TypeString, Size: 64},
		{Name: "position", Type: field.TypeString, Size: 64},
		{Name: "name", Type: field.TypeString, Size: 128},
		{Name: "description", Type: field.TypeString, Size: textSize},
	}
	categoriesTable = &schema.Table{
		Name:       TableCategories,
		Columns:    categoriesColumns,
		PrimaryKey: []*schema.Column{categoriesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "quizcategory_sport_position_name",
				Unique:  true,
				Columns: []*schema.Column{categoriesColumns[1], categoriesColumns[2], categoriesColumns[3]},
			},
		},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "category_id", Type: field.TypeInt64},
		{Name: "sport", Type: field.TypeString, Size: 64},
		{Name: "position", Type: field.TypeString, Size: 64},
		{Name: "external_key", Type: field.TypeString, Size: 128},
		{Name: "scenario", Type: field.TypeString, Size: textSize},
		{Name: "question", Type: field.TypeString, Size: textSize},
		{Name: "options", Type: field.TypeJSON},
		{Name: "correct_option", Type: field.TypeString, Size: 8},
		{Name: "explanation", Type: field.TypeString, Size: textSize},
		{Name: "difficulty", Type: field.TypeString, Size: 16},
		{Name: "tags", Type: field.TypeJSON},
		{Name: "source", Type: field.TypeString, Size: 16},
		{Name: "created_at", Type: field.TypeInt64},
	}
	questionsTable = &schema.Table{
		Name:       TableQuestions,
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_questions_quiz_categories_questions",
				Columns:    []*schema.Column{questionsColumns[1]},
				RefColumns: []*schema.Column{categoriesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "quizquestion_category_id_external_key",
				Unique:  true,
				Columns: []*schema.Column{questionsColumns[1], questionsColumns[4]},
			},
			{
				Name:    "quizquestion_sport_position",
				Columns: []*schema.Column{questionsColumns[2], questionsColumns[3]},
			},
		},
	}

	sessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 64},
		{Name: "kind", Type: field.TypeString, Size: 16},
		{Name: "sport", Type: field.TypeString, Size: 64},
		{Name: "position", Type: field.TypeString, Size: 64},
		{Name: "sequence", Type: field.TypeInt},
		{Name: "name", Type: field.TypeString},
		{Name: "question_ids", Type: field.TypeJSON},
		{Name: "is_completed", Type: field.TypeBool, Default: false},
		{Name: "best_score", Type: field.TypeInt, Default: 0},
		{Name: "best_attempt_id", Type: field.TypeString, Size: 36, Nullable: true},
		{Name: "total_attempts", Type: field.TypeInt, Default: 0},
		{Name: "version", Type: field.TypeInt64, Default: 0},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	sessionsTable = &schema.Table{
		Name:       TableSessions,
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_sessions_users_sessions",
				Columns:    []*schema.Column{sessionsColumns[1]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			// Sequence 0 is the CORE session, so this also enforces one
			// CORE per (user, sport, position).
			{
				Name:    "quizsession_user_id_sport_position_sequence",
				Unique:  true,
				Columns: []*schema.Column{sessionsColumns[1], sessionsColumns[3], sessionsColumns[4], sessionsColumns[5]},
			},
		},
	}

	attemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "session_id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 64},
		{Name: "attempt_number", Type: field.TypeInt},
		{Name: "total_score", Type: field.TypeInt},
		{Name: "correct_answers", Type: field.TypeInt},
		{Name: "total_questions", Type: field.TypeInt},
		{Name: "total_time_taken", Type: field.TypeInt, Nullable: true},
		{Name: "completed_at", Type: field.TypeInt64},
	}
	attemptsTable = &schema.Table{
		Name:       TableAttempts,
		Columns:    attemptsColumns,
		PrimaryKey: []*schema.Column{attemptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_session_attempts_quiz_sessions_attempts",
				Columns:    []*schema.Column{attemptsColumns[1]},
				RefColumns: []*schema.Column{sessionsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "quizsessionattempt_session_id_attempt_number",
				Unique:  true,
				Columns: []*schema.Column{attemptsColumns[1], attemptsColumns[3]},
			},
		},
	}

	resultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "attempt_id", Type: field.TypeString, Size: 36},
		{Name: "question_id", Type: field.TypeInt64},
		{Name: "position", Type: field.TypeInt},
		{Name: "selected_answer", Type: field.TypeString, Size: 16},
		{Name: "is_correct", Type: field.TypeBool},
		{Name: "time_taken", Type: field.TypeInt, Nullable: true},
	}
	resultsTable = &schema.Table{
		Name:       TableQuestionResults,
		Columns:    resultsColumns,
		PrimaryKey: []*schema.Column{resultsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_session_question_results_quiz_session_attempts_results",
				Columns:    []*schema.Column{resultsColumns[1]},
				RefColumns: []*schema.Column{attemptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "quizsessionquestionresult_attempt_id_position",
				Unique:  true,
				Columns: []*schema.Column{resultsColumns[1], resultsColumns[3]},
			},
		},
	}

	usageColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 64},
		{Name: "purpose", Type: field.TypeString, Size: 32},
		{Name: "provider", Type: field.TypeString, Size: 32},
		{Name: "model", Type: field.TypeString, Size: 128},
		{Name: "input_tokens", Type: field.TypeInt64},
		{Name: "output_tokens", Type: field.TypeInt64},
		{Name: "cost_cents", Type: field.TypeInt64},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize},
		{Name: "created_at", Type: field.TypeInt64},
	}
	usageTable = &schema.Table{
		Name:       TableUsageRecords,
		Columns:    usageColumns,
		PrimaryKey: []*schema.Column{usageColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "usage_records_users_usage",
				Columns:    []*schema.Column{usageColumns[1]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "usagerecord_user_id_created_at",
				Columns: []*schema.Column{usageColumns[1], usageColumns[11]},
			},
		},
	}

	tables = []*schema.Table{
		usersTable,
		categoriesTable,
		questionsTable,
		sessionsTable,
		attemptsTable,
		resultsTable,
		usageTable,
	}
)

func init() {
	questionsTable.ForeignKeys[0].RefTable = categoriesTable
	sessionsTable.ForeignKeys[0].RefTable = usersTable
	attemptsTable.ForeignKeys[0].RefTable = sessionsTable
	resultsTable.ForeignKeys[0].RefTable = attemptsTable
	usageTable.ForeignKeys[0].RefTable = usersTable
}

// migrate creates or extends every table in append-only mode.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
