package dynamo

// DynamoDB attribute names used in update expressions and key conditions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	FieldAccountID     = "account_id"
	FieldEmail         = "email"
	FieldPasswordHash  = "password_hash"
	FieldNickname      = "nickname"
	FieldAvatar        = "avatar"
	FieldGender        = "gender"
	FieldBirthday      = "birthday"
	FieldSignature     = "signature"
	FieldEmailVerified = "email_verified"
	fieldUpdatedAt     = "updated_at"

	counterName  = "name"
	counterValue = "seq"
	accountsSeq  = "accounts"
	emailIndex   = "email-index"
)
