package detectionRepository

const (
	queryCreateJob = `
		INSERT INTO face_detection_jobs (
			id,
			job_id,
			bucket,
			video_key,
			video_size,
			status,
			status_message,
			face_count,
			timestamp_count,
			requested_by,
			created_at,
			updated_at
		) VALUES (
			:id,
			:job_id,
			:bucket,
			:video_key,
			:video_size,
			:status,
			:status_message,
			:face_count,
			:timestamp_count,
			:requested_by,
			:created_at,
			:updated_at
		)
	`

	queryGetJobByJobID = `
		SELECT
			id,
			job_id,
			bucket,
			video_key,
			video_size,
			status,
			status_message,
			face_count,
			timestamp_count,
			requested_by,
			created_at,
			updated_at,
			completed_at
		FROM face_detection_jobs
		WHERE job_id = :job_id
	`

	queryGetJobsByRequester = `
		SELECT
			id,
			job_id,
			bucket,
			video_key,
			video_size,
			status,
			status_message,
			face_count,
			timestamp_count,
			requested_by,
			created_at,
			updated_at,
			completed_at
		FROM face_detection_jobs
		WHERE requested_by = :requested_by
		ORDER BY created_at DESC
	`

	queryUpdateJob = `
		UPDATE face_detection_jobs
		SET
			status = :status,
			status_message = :status_message,
			face_count = :face_count,
			timestamp_count = :timestamp_count,
			updated_at = :updated_at,
			completed_at = :completed_at
		WHERE job_id = :job_id
	`
)
