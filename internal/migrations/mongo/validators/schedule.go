package validators

import "go.mongodb.org/mongo-driver/bson"

var ScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"professional",
			"driver",
			"client_name",
			"day",
			"date",
			"start_time",
			"end_time",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"professional": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"driver": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"client_name": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 200,
			},

			"day": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Monday",
					"Tuesday",
					"Wednesday",
					"Thursday",
					"Friday",
					"Saturday",
					"Sunday",
				},
			},

			"date": bson.M{
				"bsonType": "date",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"destination": bson.M{
				"bsonType": "string",
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"service": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Pending",
					"Completed",
					"Cancelled",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
