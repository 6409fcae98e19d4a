package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-api-authsession/internal/domain"
)

// accountAPI is the subset of *dynamodb.Client used by AccountRepo.
type accountAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// AccountRepo provides typed DynamoDB operations for the accounts table.
// Account ids are allocated from an atomic counter item in the counters table.
type AccountRepo struct {
	client       accountAPI
	tableName    string
	counterTable string
	timeout      time.Duration
}

// NewAccountRepo bounds every call by timeout; zero disables the bound.
func NewAccountRepo(client accountAPI, tableName, counterTable string, timeout time.Duration) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName, counterTable: counterTable, timeout: timeout}
}

func (r *AccountRepo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// NextID atomically increments the account sequence and returns the new value.
func (r *AccountRepo) NextID(ctx context.Context) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.counterTable),
		Key:              strKey(counterName, accountsSeq),
		UpdateExpression: aws.String("ADD #s :one"),
		ExpressionAttributeNames: map[string]string{
			"#s": counterValue,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("allocate account id: %w", err)
	}
	n, ok := out.Attributes[counterValue].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("allocate account id: counter attribute missing")
	}
	return strconv.ParseInt(n.Value, 10, 64)
}

// Insert writes a new account and fails with domain.ErrConflict if the id is taken.
func (r *AccountRepo) Insert(ctx context.Context, a *domain.Account) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": FieldAccountID,
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("account %d exists: %w", a.AccountID, domain.ErrConflict)
	}
	return err
}

// FindByID returns the account or domain.ErrNotFound.
func (r *AccountRepo) FindByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       numKey(FieldAccountID, accountID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByEmail looks the account up through the email GSI. Emails are compared
// case-insensitively by storing them lower-cased.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(emailIndex),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": FieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: domain.NormalizeEmail(email)}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Update applies a partial update and stamps updated_at.
func (r *AccountRepo) Update(ctx context.Context, accountID int64, updates map[string]interface{}) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}
	names := ue.Names
	names["#pk"] = FieldAccountID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       numKey(FieldAccountID, accountID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("account %d: %w", accountID, domain.ErrNotFound)
	}
	return err
}
