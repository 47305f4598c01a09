// Package dynamodb implements the inventory graph store on a single
// DynamoDB table. Items, rooms and located-in edges share the table
// under composite keys; GSI1 enumerates entities by type.
package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"homegraph/application/ports"
	"homegraph/domain/inventory"
	"homegraph/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Key layout:
//
//	Item  PK=ITEM#<item_id>  SK=METADATA   GSI1PK=ENTITY#ITEM GSI1SK=ITEM#<item_id>
//	Room  PK=ROOM#<name>     SK=METADATA   GSI1PK=ENTITY#ROOM GSI1SK=ROOM#<name>
//	Edge  PK=ITEM#<item_id>  SK=ROOM#<name>
const (
	skMetadata   = "METADATA"
	gsi1Name     = "GSI1"
	gsi1ItemsKey = "ENTITY#ITEM"
	gsi1RoomsKey = "ENTITY#ROOM"
)

func itemPK(itemID string) string { return fmt.Sprintf("ITEM#%s", itemID) }
func roomPK(name string) string   { return fmt.Sprintf("ROOM#%s", name) }

// InventoryRepository implements ports.InventoryRepository using DynamoDB.
type InventoryRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewInventoryRepository creates a new InventoryRepository.
func NewInventoryRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.InventoryRepository {
	return &InventoryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// itemRecord is the DynamoDB item structure for a catalog item.
type itemRecord struct {
	PK           string    `dynamodbav:"PK"`
	SK           string    `dynamodbav:"SK"`
	GSI1PK       string    `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK       string    `dynamodbav:"GSI1SK,omitempty"`
	EntityType   string    `dynamodbav:"EntityType"`
	ItemID       string    `dynamodbav:"ItemID"`
	Name         string    `dynamodbav:"Name"`
	SKU          string    `dynamodbav:"SKU"`
	Price        float64   `dynamodbav:"Price"`
	Quantity     int       `dynamodbav:"Quantity"`
	AddDate      string    `dynamodbav:"AddDate"`
	PurchaseDate *string   `dynamodbav:"PurchaseDate,omitempty"`
	Description  *string   `dynamodbav:"Description,omitempty"`
	Embedding    []float64 `dynamodbav:"Embedding,omitempty"`
	Confidence   *float64  `dynamodbav:"Confidence,omitempty"`
	RoomName     string    `dynamodbav:"RoomName"`
	CreatedAt    string    `dynamodbav:"CreatedAt"`
	UpdatedAt    string    `dynamodbav:"UpdatedAt"`
}

// roomRecord is the DynamoDB item structure for a room.
type roomRecord struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	GSI1PK     string    `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK     string    `dynamodbav:"GSI1SK,omitempty"`
	EntityType string    `dynamodbav:"EntityType"`
	Name       string    `dynamodbav:"Name"`
	Embedding  []float64 `dynamodbav:"Embedding,omitempty"`
	CreatedAt  string    `dynamodbav:"CreatedAt"`
}

// UpsertObservation applies one observation as a single transaction of
// three conditional updates. Quantity accumulates via an ADD action so
// concurrent observations of the same item never lose increments; the
// room embedding and the edge's Since are written through
// if_not_exists so only the first writer sets them.
func (r *InventoryRepository) UpsertObservation(ctx context.Context, obs inventory.Observation) error {
	now := utils.NowRFC3339()

	transact := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: r.roomUpdate(obs, now)},
			{Update: r.itemUpdate(obs, now)},
			{Update: r.edgeUpdate(obs, now)},
		},
	}

	if _, err := r.client.TransactWriteItems(ctx, transact); err != nil {
		r.logger.Error("Observation upsert transaction failed",
			zap.Error(err),
			zap.String("itemID", obs.ItemID),
			zap.String("room", obs.Room),
		)
		return fmt.Errorf("failed to upsert observation: %w", err)
	}

	r.logger.Debug("Observation upserted",
		zap.String("itemID", obs.ItemID),
		zap.String("room", obs.Room),
		zap.Int("quantityDelta", obs.Quantity),
	)

	return nil
}

// UpsertLineItem routes receipt lines through the same transaction,
// with no image-derived embeddings and the room already forced to
// "unknown" by the caller.
func (r *InventoryRepository) UpsertLineItem(ctx context.Context, obs inventory.Observation) error {
	obs.Room = inventory.UnknownRoom
	obs.Embedding = nil
	obs.RoomEmbedding = nil
	return r.UpsertObservation(ctx, obs)
}

// roomUpdate match-or-creates the room node. The stored embedding is
// fixed at first creation; later observations never overwrite it.
func (r *InventoryRepository) roomUpdate(obs inventory.Observation, now string) *types.Update {
	expr := "SET EntityType = :etype, #name = :name, GSI1PK = :gpk, GSI1SK = :gsk, CreatedAt = if_not_exists(CreatedAt, :now)"
	values := map[string]types.AttributeValue{
		":etype": &types.AttributeValueMemberS{Value: "ROOM"},
		":name":  &types.AttributeValueMemberS{Value: obs.Room},
		":gpk":   &types.AttributeValueMemberS{Value: gsi1RoomsKey},
		":gsk":   &types.AttributeValueMemberS{Value: roomPK(obs.Room)},
		":now":   &types.AttributeValueMemberS{Value: now},
	}
	if obs.RoomEmbedding != nil {
		expr += ", Embedding = if_not_exists(Embedding, :emb)"
		values[":emb"] = marshalVector(obs.RoomEmbedding)
	}

	return &types.Update{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: roomPK(obs.Room)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  map[string]string{"#name": "Name"},
		ExpressionAttributeValues: values,
	}
}

// itemUpdate match-or-creates the catalog item. Descriptive fields are
// last-write-wins; Quantity accumulates server-side.
func (r *InventoryRepository) itemUpdate(obs inventory.Observation, now string) *types.Update {
	expr := "SET EntityType = :etype, ItemID = :itemID, #name = :name, SKU = :sku, Price = :price, " +
		"AddDate = :addDate, RoomName = :room, GSI1PK = :gpk, GSI1SK = :gsk, " +
		"CreatedAt = if_not_exists(CreatedAt, :now), UpdatedAt = :now"
	values := map[string]types.AttributeValue{
		":etype":   &types.AttributeValueMemberS{Value: "ITEM"},
		":itemID":  &types.AttributeValueMemberS{Value: obs.ItemID},
		":name":    &types.AttributeValueMemberS{Value: obs.Name},
		":sku":     &types.AttributeValueMemberS{Value: obs.SKU},
		":price":   &types.AttributeValueMemberN{Value: strconv.FormatFloat(obs.Price, 'f', -1, 64)},
		":addDate": &types.AttributeValueMemberS{Value: obs.AddDate.UTC().Format(time.RFC3339)},
		":room":    &types.AttributeValueMemberS{Value: obs.Room},
		":gpk":     &types.AttributeValueMemberS{Value: gsi1ItemsKey},
		":gsk":     &types.AttributeValueMemberS{Value: itemPK(obs.ItemID)},
		":now":     &types.AttributeValueMemberS{Value: now},
		":qty":     &types.AttributeValueMemberN{Value: strconv.Itoa(obs.Quantity)},
	}

	if obs.Description != nil {
		expr += ", Description = :desc"
		values[":desc"] = &types.AttributeValueMemberS{Value: *obs.Description}
	}
	if obs.Embedding != nil {
		expr += ", Embedding = :emb"
		values[":emb"] = marshalVector(obs.Embedding)
	}
	if obs.PurchaseDate != nil {
		expr += ", PurchaseDate = :purchased"
		values[":purchased"] = &types.AttributeValueMemberS{Value: obs.PurchaseDate.UTC().Format(time.RFC3339)}
	}
	if obs.Confidence != nil {
		expr += ", Confidence = :conf"
		values[":conf"] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(*obs.Confidence, 'f', -1, 64)}
	}
	expr += " ADD Quantity :qty"

	return &types.Update{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: itemPK(obs.ItemID)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  map[string]string{"#name": "Name"},
		ExpressionAttributeValues: values,
	}
}

// edgeUpdate match-or-creates the located-in edge. Since is fixed at
// first creation; LastUpdated tracks the latest sighting. Reclassified
// items simply gain an additional edge under a new SK.
func (r *InventoryRepository) edgeUpdate(obs inventory.Observation, now string) *types.Update {
	addDate := obs.AddDate.UTC().Format(time.RFC3339)

	return &types.Update{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: itemPK(obs.ItemID)},
			"SK": &types.AttributeValueMemberS{Value: roomPK(obs.Room)},
		},
		UpdateExpression: aws.String(
			"SET EntityType = :etype, ItemID = :itemID, RoomName = :room, " +
				"Since = if_not_exists(Since, :addDate), LastUpdated = :addDate, UpdatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":etype":   &types.AttributeValueMemberS{Value: "LOCATED_IN"},
			":itemID":  &types.AttributeValueMemberS{Value: obs.ItemID},
			":room":    &types.AttributeValueMemberS{Value: obs.Room},
			":addDate": &types.AttributeValueMemberS{Value: addDate},
			":now":     &types.AttributeValueMemberS{Value: now},
		},
	}
}

// ListItemsWithEmbeddings enumerates every catalog item carrying an
// embedding, paging through GSI1.
func (r *InventoryRepository) ListItemsWithEmbeddings(ctx context.Context) ([]inventory.Item, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(gsi1ItemsKey))
	filter := expression.AttributeExists(expression.Name("Embedding"))

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(filter).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build item query: %w", err)
	}

	var items []inventory.Item
	var lastKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(gsi1Name),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		}

		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query items: %w", err)
		}

		for _, av := range result.Items {
			var rec itemRecord
			if err := attributevalue.UnmarshalMap(av, &rec); err != nil {
				r.logger.Warn("Failed to unmarshal item record", zap.Error(err))
				continue
			}
			items = append(items, rec.toItem())
		}

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	r.logger.Debug("Listed embedded items", zap.Int("count", len(items)))
	return items, nil
}

// GetRoomsByName batch-fetches rooms; absent names are simply missing
// from the result map.
func (r *InventoryRepository) GetRoomsByName(ctx context.Context, names []string) (map[string]inventory.Room, error) {
	rooms := make(map[string]inventory.Room, len(names))
	if len(names) == 0 {
		return rooms, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(names))
	for _, name := range names {
		keys = append(keys, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: roomPK(name)},
			"SK": &types.AttributeValueMemberS{Value: skMetadata},
		})
	}

	for len(keys) > 0 {
		input := &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				r.tableName: {Keys: keys},
			},
		}

		result, err := r.client.BatchGetItem(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to batch get rooms: %w", err)
		}

		for _, av := range result.Responses[r.tableName] {
			var rec roomRecord
			if err := attributevalue.UnmarshalMap(av, &rec); err != nil {
				r.logger.Warn("Failed to unmarshal room record", zap.Error(err))
				continue
			}
			rooms[rec.Name] = rec.toRoom()
		}

		keys = result.UnprocessedKeys[r.tableName].Keys
	}

	return rooms, nil
}

func (rec itemRecord) toItem() inventory.Item {
	item := inventory.Item{
		ItemID:      rec.ItemID,
		Name:        rec.Name,
		SKU:         rec.SKU,
		Price:       rec.Price,
		Quantity:    rec.Quantity,
		Description: rec.Description,
		Embedding:   rec.Embedding,
		Confidence:  rec.Confidence,
		RoomName:    rec.RoomName,
		AddDate:     parseStoredTime(rec.AddDate),
		CreatedAt:   parseStoredTime(rec.CreatedAt),
		UpdatedAt:   parseStoredTime(rec.UpdatedAt),
	}
	if rec.PurchaseDate != nil {
		t := parseStoredTime(*rec.PurchaseDate)
		item.PurchaseDate = &t
	}
	return item
}

func (rec roomRecord) toRoom() inventory.Room {
	return inventory.Room{
		Name:      rec.Name,
		Embedding: rec.Embedding,
		CreatedAt: parseStoredTime(rec.CreatedAt),
	}
}

func parseStoredTime(raw string) time.Time {
	t, err := utils.ParseRFC3339(raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// marshalVector stores embeddings as a DynamoDB number list, matching
// the attributevalue encoding of []float64.
func marshalVector(vec []float64) types.AttributeValue {
	members := make([]types.AttributeValue, len(vec))
	for i, v := range vec {
		members[i] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return &types.AttributeValueMemberL{Value: members}
}
