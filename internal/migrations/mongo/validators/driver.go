package validators

import "go.mongodb.org/mongo-driver/bson"

var DriverValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"first_name",
			"last_name",
			"email",
			"phone_no",
			"start_time",
			"end_time",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType": "string",
				"pattern":  "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$",
			},

			"phone_no": bson.M{
				"bsonType":  "string",
				"minLength": 5,
				"maxLength": 20,
			},

			"vehicle_capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"priority": bson.M{
				"bsonType": "string",
				"enum":     []string{"High", "Medium", "Low"},
			},

			"active_days": bson.M{
				"bsonType": "array",
				"items": bson.M{
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
			},

			"photos": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
